package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/lighthouse-api/internal/repository/ports"
)

type Store struct {
	db   *sqlx.DB
	exec sqlx.ExtContext
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, exec: db}
}

func (s *Store) Accounts() ports.AccountRepository {
	return NewAccountRepo(s.exec)
}

func (s *Store) ResetTokens() ports.ResetTokenRepository {
	return NewResetTokenRepo(s.exec)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if _, nested := s.exec.(*sqlx.Tx); nested {
		return fn(s)
	}
	return WithTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sqlx.Tx) error {
		return fn(&Store{db: s.db, exec: tx})
	})
}
