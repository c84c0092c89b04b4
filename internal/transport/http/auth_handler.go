package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/lighthouse-api/internal/service"
	"github.com/njprem/lighthouse-api/internal/util"
)

type SessionCookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   *service.AuthService
	cookie SessionCookieConfig
	// exposeResetToken returns reset tokens in responses; development only.
	exposeResetToken bool
	logger           *slog.Logger
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, cookie SessionCookieConfig, exposeResetToken bool, logger *slog.Logger) {
	h := &AuthHandler{auth: auth, cookie: cookie, exposeResetToken: exposeResetToken, logger: logger}

	g := e.Group("/auth")
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/session", h.session, RequireSession(auth, cookie.Name))
	g.POST("/password-reset/request", h.requestPasswordReset)
	g.POST("/password-reset/consume", h.consumePasswordReset)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	var image *service.ImageUpload

	if isMultipart(c) {
		req.FirstName = c.FormValue("firstName")
		req.LastName = c.FormValue("lastName")
		req.Username = c.FormValue("username")
		req.Password = c.FormValue("password")
		if email := c.FormValue("email"); email != "" {
			req.Email = &email
		}
		fileHeader, err := c.FormFile("image")
		switch {
		case err == nil:
			src, err := fileHeader.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
			}
			defer src.Close()
			image = &service.ImageUpload{
				Reader:      src,
				Size:        fileHeader.Size,
				FileName:    fileHeader.Filename,
				ContentType: fileHeader.Header.Get(echo.HeaderContentType),
			}
		case errors.Is(err, http.ErrMissingFile):
			// image is optional
		default:
			return c.JSON(http.StatusBadRequest, util.Error("invalid multipart body"))
		}
	} else if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	account, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Image:     image,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, SignupResponse{Success: true, ID: account.ID.String()})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      newSessionUser(result.Claim),
	})
}

func (h *AuthHandler) logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, util.Success())
}

func (h *AuthHandler) session(c echo.Context) error {
	claim, ok := CurrentClaim(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
	}
	return c.JSON(http.StatusOK, SessionResponse{User: newSessionUser(claim)})
}

func (h *AuthHandler) requestPasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	ticket, err := h.auth.RequestPasswordReset(c.Request().Context(), req.Username)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	resp := PasswordResetRequestResponse{Success: true}
	if h.exposeResetToken {
		resp.Token = ticket.Token
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) consumePasswordReset(c echo.Context) error {
	var req PasswordResetConsumeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success())
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	setSessionCookie(c, h.cookie, token, expiresAt)
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	if h.cookie.Name == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func setSessionCookie(c echo.Context, cfg SessionCookieConfig, token string, expiresAt time.Time) {
	if cfg.Name == "" {
		return
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func isMultipart(c echo.Context) bool {
	ct := strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
	return strings.HasPrefix(ct, echo.MIMEMultipartForm)
}
