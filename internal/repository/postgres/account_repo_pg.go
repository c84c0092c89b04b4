package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/lighthouse-api/internal/domain"
)

const accountColumns = `id, username, password_hash, first_name, last_name, email, profile_image_url, created_at, updated_at`

type AccountRepository struct {
	db sqlx.ExtContext
}

func NewAccountRepo(db sqlx.ExtContext) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	const query = `
        INSERT INTO account (username, password_hash, first_name, last_name, email, profile_image_url)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + accountColumns

	row := r.db.QueryRowxContext(ctx, query,
		account.Username, account.PasswordHash, account.FirstName, account.LastName, account.Email, account.ProfileImageURL)
	var created domain.Account
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM account WHERE id = $1`
	var account domain.Account
	if err := sqlx.GetContext(ctx, r.db, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM account WHERE username = $1`
	var account domain.Account
	if err := sqlx.GetContext(ctx, r.db, &account, query, username); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.AccountProfile) (*domain.Account, error) {
	const query = `
        UPDATE account
        SET first_name = $2,
            last_name = $3,
            username = $4,
            profile_image_url = CASE WHEN $6 THEN profile_image_url ELSE $5 END,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + accountColumns

	row := r.db.QueryRowxContext(ctx, query, id, profile.FirstName, profile.LastName, profile.Username, profile.ProfileImageURL, profile.KeepImage)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateProfileImage sets only the image column.
func (r *AccountRepository) UpdateProfileImage(ctx context.Context, id uuid.UUID, imageURL *string) (*domain.Account, error) {
	const query = `
        UPDATE account
        SET profile_image_url = $2,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + accountColumns

	row := r.db.QueryRowxContext(ctx, query, id, imageURL)
	var account domain.Account
	if err := row.StructScan(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const query = `
        UPDATE account
        SET password_hash = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return err
}

func (r *AccountRepository) Search(ctx context.Context, term string, limit int) ([]domain.AccountSearchResult, error) {
	const query = `
        SELECT id, username, first_name, last_name, profile_image_url, created_at
        FROM account
        WHERE username ILIKE $1 ESCAPE '\'
           OR first_name ILIKE $1 ESCAPE '\'
           OR last_name ILIKE $1 ESCAPE '\'
        ORDER BY created_at ASC
        LIMIT $2
    `
	results := make([]domain.AccountSearchResult, 0)
	if err := sqlx.SelectContext(ctx, r.db, &results, query, containsPattern(term), limit); err != nil {
		return nil, err
	}
	return results, nil
}

func containsPattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(term) + "%"
}
