package postgres

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

// New opens a pooled connection using either the pgx or the lib/pq driver.
func New(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "", DriverPGX:
		return sqlx.Connect(DriverPGX, dsn)
	case DriverPQ:
		return sqlx.Connect(DriverPQ, dsn)
	default:
		return nil, fmt.Errorf("postgres: unsupported driver %q", driver)
	}
}
