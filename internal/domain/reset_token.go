package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResetToken is a single-use credential authorizing one password change.
// Token holds the digest of the value handed to the user, never the raw value.
type ResetToken struct {
	Token     string    `db:"token" json:"-"`
	AccountID uuid.UUID `db:"account_id" json:"accountId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ValidAt reports whether the token can still be consumed at now.
func (t *ResetToken) ValidAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
