package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionClaim is the identity carried by a signed session token. It is never persisted.
type SessionClaim struct {
	AccountID       uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	DisplayName     string    `json:"name"`
	ProfileImageURL *string   `json:"image,omitempty"`
	IssuedAt        time.Time `json:"issuedAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

func NewSessionClaim(a *Account) SessionClaim {
	return SessionClaim{
		AccountID:       a.ID,
		Username:        a.Username,
		DisplayName:     a.DisplayName(),
		ProfileImageURL: a.ProfileImageURL,
	}
}
