package ports

import (
	"context"
	"errors"
)

// ErrUniqueViolation is returned by stores that are not backed by Postgres
// when a write collides with a unique key.
var ErrUniqueViolation = errors.New("unique constraint violated")

// Store groups the repositories that must be able to share a transaction.
type Store interface {
	Accounts() AccountRepository
	ResetTokens() ResetTokenRepository
	// WithinTx runs fn against repositories bound to one transaction. fn's
	// writes are committed together when it returns nil and discarded otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
