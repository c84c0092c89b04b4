package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Username        string    `db:"username" json:"username"`
	PasswordHash    *string   `db:"password_hash" json:"-"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	Email           *string   `db:"email" json:"email,omitempty"`
	ProfileImageURL *string   `db:"profile_image_url" json:"imageUrl,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// HasPassword reports whether the account can sign in with credentials.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// DisplayName joins first and last name, falling back to the username when both are blank.
func (a *Account) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if name == "" {
		return a.Username
	}
	return name
}

// AccountProfile is the mutable, user-facing part of an account.
type AccountProfile struct {
	FirstName       string
	LastName        string
	Username        string
	ProfileImageURL *string
	// KeepImage leaves the stored image untouched and ignores ProfileImageURL.
	KeepImage bool
}

type AccountSearchResult struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Username        string    `db:"username" json:"username"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	ProfileImageURL *string   `db:"profile_image_url" json:"imageUrl,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
