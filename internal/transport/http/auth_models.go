package http

import (
	"encoding/json"
	"time"

	"github.com/njprem/lighthouse-api/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid username or password"`
}

// ValidationErrorResponse lists one message per rejected field.
type ValidationErrorResponse struct {
	Error   string            `json:"error" example:"invalid input"`
	Details map[string]string `json:"details"`
}

// SuccessResponse denotes a simple success flag.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// SessionUser is the claim carried by a session token.
type SessionUser struct {
	ID       string  `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Username string  `json:"username" example:"alice"`
	Name     string  `json:"name" example:"Alice Liddell"`
	ImageURL *string `json:"image,omitempty" example:"https://cdn.example.com/avatars/a.png"`
}

func newSessionUser(claim *domain.SessionClaim) SessionUser {
	return SessionUser{
		ID:       claim.AccountID.String(),
		Username: claim.Username,
		Name:     claim.DisplayName,
		ImageURL: claim.ProfileImageURL,
	}
}

// SignupRequest carries registration fields when sent as JSON.
type SignupRequest struct {
	FirstName string  `json:"firstName" form:"firstName" example:"Alice"`
	LastName  string  `json:"lastName" form:"lastName" example:"Liddell"`
	Username  string  `json:"username" form:"username" example:"alice"`
	Password  string  `json:"password" form:"password" example:"secret1"`
	Email     *string `json:"email,omitempty" form:"email" example:"alice@example.com"`
}

type SignupResponse struct {
	Success bool   `json:"success" example:"true"`
	ID      string `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
}

type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"secret1"`
}

// LoginResponse is returned by endpoints that issue session tokens.
type LoginResponse struct {
	Token     string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time   `json:"expiresAt" example:"2024-01-31T09:30:00Z"`
	User      SessionUser `json:"user"`
}

type SessionResponse struct {
	User SessionUser `json:"user"`
}

type PasswordResetRequest struct {
	Username string `json:"username" example:"alice"`
}

// PasswordResetRequestResponse only carries the token in development mode.
type PasswordResetRequestResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token,omitempty"`
}

type PasswordResetConsumeRequest struct {
	Token    string `json:"token"`
	Password string `json:"password" example:"newpass1"`
}

type ProfileResponse struct {
	FirstName string  `json:"firstName" example:"Alice"`
	LastName  string  `json:"lastName" example:"Liddell"`
	Username  string  `json:"username" example:"alice"`
	ImageURL  *string `json:"imageUrl"`
}

func newProfileResponse(a *domain.Account) ProfileResponse {
	return ProfileResponse{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Username:  a.Username,
		ImageURL:  a.ProfileImageURL,
	}
}

// ProfileUpdateRequest leaves the image untouched when imageUrl is absent and
// clears it when imageUrl is null.
type ProfileUpdateRequest struct {
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Username  string          `json:"username"`
	ImageURL  json.RawMessage `json:"imageUrl"`
}

type ProfileUpdateResponse struct {
	ProfileResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AvatarResponse struct {
	URL string `json:"url" example:"https://cdn.example.com/lighthouse-avatars/avatars/1.png"`
}

type UserSearchResponse struct {
	Users []domain.AccountSearchResult `json:"users"`
}
