package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
	redacted           = "redacted"
	binaryPlaceholder  = "binary"
)

// sensitiveKeys never reach the logs. Matching is by substring of the lowercased key.
var sensitiveKeys = []string{"password", "token", "secret", "authorization"}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func registerLogging(e *echo.Echo, logger *slog.Logger) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			accountID := "anonymous"
			if claim, ok := CurrentClaim(c); ok {
				accountID = claim.AccountID.String()
			}

			req := []any{slog.String("method", v.Method), slog.String("uri", redactQuery(v.URI))}
			if body := c.Get(requestBodyLogKey); body != nil {
				req = append(req, slog.Any("body", body))
			}
			res := []any{slog.Int("status", v.Status)}
			if body := c.Get(responseBodyLogKey); body != nil {
				res = append(res, slog.Any("body", body))
			}
			if v.Error != nil {
				res = append(res, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(context.Background(), level, "http request",
				slog.String("account_id", accountID),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
				slog.Group("request", req...),
				slog.Group("response", res...),
			)
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

func redactQuery(uri string) string {
	u, err := url.ParseRequestURI(uri)
	if err != nil || u.RawQuery == "" {
		return uri
	}
	q := u.Query()
	for key := range q {
		if isSensitiveKey(key) {
			q.Set(key, redacted)
		}
	}
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

func sanitizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(ct, echo.MIMEMultipartForm):
		return sanitizeMultipart(body, contentType)
	case strings.HasPrefix(ct, echo.MIMEApplicationForm):
		if values, err := url.ParseQuery(string(body)); err == nil {
			fields := make(map[string]any, len(values))
			for key, vals := range values {
				fields[key] = sanitizeString(strings.Join(vals, ","), key)
			}
			return limitSize(fields)
		}
	case strings.HasPrefix(ct, echo.MIMEApplicationJSON) || json.Valid(body):
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return limitSize(sanitizeJSON(data, ""))
		}
	}

	if containsBinary(body) {
		return binaryPlaceholder
	}
	text := string(body)
	for _, s := range sensitiveKeys {
		if strings.Contains(strings.ToLower(text), s) {
			return redacted
		}
	}
	return clamp(text)
}

func sanitizeJSON(value any, key string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if isSensitiveKey(k) {
				out[k] = redacted
				continue
			}
			out[k] = sanitizeJSON(val, k)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitizeJSON(item, key)
		}
		return out
	case string:
		return sanitizeString(v, key)
	default:
		return v
	}
}

func sanitizeString(value, key string) string {
	if key != "" && isSensitiveKey(key) {
		return redacted
	}
	if containsBinary([]byte(value)) {
		return binaryPlaceholder
	}
	return clamp(value)
}

func sanitizeMultipart(body []byte, contentType string) any {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["boundary"] == "" {
		return binaryPlaceholder
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := make(map[string]any)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return binaryPlaceholder
		}
		name := part.FormName()
		switch {
		case name == "":
		case part.FileName() != "":
			fields[name] = binaryPlaceholder
		default:
			data, err := io.ReadAll(io.LimitReader(part, maxLoggedBody+1))
			if err != nil {
				fields[name] = binaryPlaceholder
			} else {
				fields[name] = sanitizeString(string(data), name)
			}
		}
		_ = part.Close()
	}
	if len(fields) == 0 {
		return binaryPlaceholder
	}
	return limitSize(fields)
}

// limitSize replaces values whose JSON encoding exceeds maxLoggedBody with a marker.
func limitSize(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return map[string]any{"_truncated": true, "_bytes": len(buf)}
}

func containsBinary(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clamp(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
