package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/lighthouse-api/internal/domain"
	"github.com/njprem/lighthouse-api/internal/service"
	"github.com/njprem/lighthouse-api/internal/util"
)

const contextClaimKey = "session_claim"

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(c echo.Context, cookieName string) string {
	if header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireSession rejects requests without a valid, unexpired session token.
func RequireSession(auth *service.AuthService, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c, cookieName)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
			}
			claim := auth.ResolveSession(token)
			if claim == nil {
				return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
			}
			c.Set(contextClaimKey, claim)
			return next(c)
		}
	}
}

func CurrentClaim(c echo.Context) (*domain.SessionClaim, bool) {
	claim, ok := c.Get(contextClaimKey).(*domain.SessionClaim)
	return claim, ok && claim != nil
}
