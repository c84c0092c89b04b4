package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/lighthouse-api/internal/domain"
)

type ResetTokenRepository struct {
	db sqlx.ExtContext
}

func NewResetTokenRepo(db sqlx.ExtContext) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) (*domain.ResetToken, error) {
	const query = `
        INSERT INTO password_reset_token (token, account_id, expires_at)
        VALUES ($1, $2, $3)
        RETURNING token, account_id, expires_at, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, token, accountID, expiresAt)
	var reset domain.ResetToken
	if err := row.StructScan(&reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	const query = `
        SELECT token, account_id, expires_at, created_at
        FROM password_reset_token
        WHERE token = $1
    `
	var reset domain.ResetToken
	if err := sqlx.GetContext(ctx, r.db, &reset, query, token); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *ResetTokenRepository) Claim(ctx context.Context, token string, now time.Time) (uuid.UUID, error) {
	const query = `
        DELETE FROM password_reset_token
        WHERE token = $1 AND expires_at > $2
        RETURNING account_id
    `
	var accountID uuid.UUID
	if err := r.db.QueryRowxContext(ctx, query, token, now).Scan(&accountID); err != nil {
		return uuid.Nil, err
	}
	return accountID, nil
}

func (r *ResetTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	const query = `DELETE FROM password_reset_token WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

func (r *ResetTokenRepository) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	const query = `DELETE FROM password_reset_token WHERE account_id = $1`
	res, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
