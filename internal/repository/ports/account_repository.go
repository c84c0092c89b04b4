package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.AccountProfile) (*domain.Account, error)
	UpdateProfileImage(ctx context.Context, id uuid.UUID, imageURL *string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Search(ctx context.Context, query string, limit int) ([]domain.AccountSearchResult, error)
}
