package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/lighthouse-api/internal/service"
)

func TestWriteErrorMapping(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"username": "is required"}}, http.StatusBadRequest, "invalid input"},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest, service.ErrInvalidInput.Error()},
		{"taken", fmt.Errorf("register: %w", service.ErrUsernameTaken), http.StatusConflict, service.ErrUsernameTaken.Error()},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, service.ErrInvalidCredentials.Error()},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, service.ErrUnauthorized.Error()},
		{"reset token", service.ErrInvalidOrExpiredToken, http.StatusBadRequest, service.ErrInvalidOrExpiredToken.Error()},
		{"not found", service.ErrAccountNotFound, http.StatusNotFound, service.ErrAccountNotFound.Error()},
		{"upstream", fmt.Errorf("%w: minio down", service.ErrUpstream), http.StatusInternalServerError, service.ErrUpstream.Error()},
		{"unknown", errors.New("connection reset by peer"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, writeError(c, logger, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body["error"])
			assert.NotContains(t, rec.Body.String(), "minio down")
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}
