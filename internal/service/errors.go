package service

import (
	"database/sql"
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/njprem/lighthouse-api/internal/repository/ports"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrUnauthorized          = errors.New("authentication required")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUpstream              = errors.New("upstream service unavailable")
	ErrAccountNotFound       = errors.New("account not found")
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// asValidationError converts ozzo-validation output. Internal rule failures pass through.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		var internal validation.InternalError
		if errors.As(fieldErr, &internal) {
			return internal.InternalError()
		}
		fields[field] = fieldErr.Error()
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, ports.ErrUniqueViolation) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgerrcode.UniqueViolation
	}
	return false
}
