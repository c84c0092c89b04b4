package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/lighthouse-api/internal/service"
	"github.com/njprem/lighthouse-api/internal/util"
)

type ProfileHandler struct {
	profiles *service.ProfileService
	cookie   SessionCookieConfig
	logger   *slog.Logger
}

func RegisterProfile(e *echo.Echo, auth *service.AuthService, profiles *service.ProfileService, cookie SessionCookieConfig, logger *slog.Logger) {
	h := &ProfileHandler{profiles: profiles, cookie: cookie, logger: logger}

	g := e.Group("/profile", RequireSession(auth, cookie.Name))
	g.GET("", h.get)
	g.PATCH("", h.update)
	g.POST("/avatar", h.uploadAvatar)

	e.GET("/users/search", h.search)
}

func (h *ProfileHandler) get(c echo.Context) error {
	claim, ok := CurrentClaim(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
	}
	account, err := h.profiles.Get(c.Request().Context(), claim.AccountID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, newProfileResponse(account))
}

func (h *ProfileHandler) update(c echo.Context) error {
	claim, ok := CurrentClaim(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
	}
	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	input := service.ProfileUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	}
	switch raw := bytes.TrimSpace(req.ImageURL); {
	case len(raw) == 0:
		input.KeepImage = true
	case bytes.Equal(raw, []byte("null")):
		// null clears the image
	default:
		var url string
		if err := json.Unmarshal(raw, &url); err != nil {
			return c.JSON(http.StatusBadRequest, util.ErrorDetails(service.ErrInvalidInput.Error(), map[string]string{
				"imageUrl": "must be a string or null",
			}))
		}
		input.ImageURL = &url
	}

	result, err := h.profiles.Update(c.Request().Context(), claim.AccountID, input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	setSessionCookie(c, h.cookie, result.Session.Token, result.Session.ExpiresAt)
	return c.JSON(http.StatusOK, ProfileUpdateResponse{
		ProfileResponse: newProfileResponse(result.Account),
		Token:           result.Session.Token,
		ExpiresAt:       result.Session.ExpiresAt,
	})
}

func (h *ProfileHandler) uploadAvatar(c echo.Context) error {
	claim, ok := CurrentClaim(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrUnauthorized.Error()))
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return c.JSON(http.StatusBadRequest, util.ErrorDetails(service.ErrInvalidInput.Error(), map[string]string{
				"file": "is required",
			}))
		}
		return c.JSON(http.StatusBadRequest, util.Error("file upload required"))
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer src.Close()

	url, err := h.profiles.UploadAvatar(c.Request().Context(), claim.AccountID, service.ImageUpload{
		Reader:      src,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, AvatarResponse{URL: url})
}

func (h *ProfileHandler) search(c echo.Context) error {
	users, err := h.profiles.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, UserSearchResponse{Users: users})
}
