package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/lighthouse-api/internal/service"
	"github.com/njprem/lighthouse-api/internal/util"
)

// writeError maps service errors to responses. Internal causes are logged and
// never echoed to the client.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, util.ErrorDetails(service.ErrInvalidInput.Error(), verr.Fields))
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, util.Error(service.ErrInvalidInput.Error()))
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, util.Error(service.ErrUsernameTaken.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrInvalidCredentials.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return c.JSON(http.StatusBadRequest, util.Error(service.ErrInvalidOrExpiredToken.Error()))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error(service.ErrAccountNotFound.Error()))
	case errors.Is(err, service.ErrUpstream):
		logger.ErrorContext(c.Request().Context(), "upstream failure",
			slog.String("path", c.Path()), slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, util.Error(service.ErrUpstream.Error()))
	default:
		logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("path", c.Path()), slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}
