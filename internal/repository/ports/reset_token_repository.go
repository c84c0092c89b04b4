package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/domain"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) (*domain.ResetToken, error)
	FindByToken(ctx context.Context, token string) (*domain.ResetToken, error)
	// Claim deletes token if it is still valid at now and returns its owner.
	Claim(ctx context.Context, token string, now time.Time) (uuid.UUID, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}
