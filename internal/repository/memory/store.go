// Package memory is a process-local Store used for development and tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/lighthouse-api/internal/domain"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
)

type state struct {
	accounts map[uuid.UUID]domain.Account
	tokens   map[string]domain.ResetToken
}

func (s *state) clone() *state {
	out := &state{
		accounts: make(map[uuid.UUID]domain.Account, len(s.accounts)),
		tokens:   make(map[string]domain.ResetToken, len(s.tokens)),
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.tokens {
		out.tokens[k] = v
	}
	return out
}

// Store keeps accounts and reset tokens in maps. Transactions work on a copy
// of the data and swap it in on success. Transactions are serialized.
type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	data *state
	now  func() time.Time
	inTx bool
}

func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		txMu: &sync.Mutex{},
		data: &state{
			accounts: make(map[uuid.UUID]domain.Account),
			tokens:   make(map[string]domain.ResetToken),
		},
		now: time.Now,
	}
}

// WithClock sets the time source used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Accounts() ports.AccountRepository {
	return &accountRepo{store: s}
}

func (s *Store) ResetTokens() ports.ResetTokenRepository {
	return &resetTokenRepo{store: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	working := s.data.clone()
	s.mu.Unlock()

	tx := &Store{mu: &sync.Mutex{}, txMu: s.txMu, data: working, now: s.now, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = working
	s.mu.Unlock()
	return nil
}

// lock serializes access to the data. Outside a transaction it also waits for
// any running transaction so that its swap cannot drop concurrent writes.
func (s *Store) lock() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

type accountRepo struct {
	store *Store
}

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	for _, existing := range s.data.accounts {
		if existing.Username == account.Username {
			return nil, ports.ErrUniqueViolation
		}
	}
	created := *account
	created.ID = uuid.New()
	now := s.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	s.data.accounts[created.ID] = created
	return &created, nil
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	account, ok := s.data.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &account, nil
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	for _, account := range s.data.accounts {
		if account.Username == username {
			found := account
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *accountRepo) UpdateProfile(ctx context.Context, id uuid.UUID, profile domain.AccountProfile) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	account, ok := s.data.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for otherID, other := range s.data.accounts {
		if otherID != id && other.Username == profile.Username {
			return nil, ports.ErrUniqueViolation
		}
	}
	account.FirstName = profile.FirstName
	account.LastName = profile.LastName
	account.Username = profile.Username
	if !profile.KeepImage {
		account.ProfileImageURL = profile.ProfileImageURL
	}
	account.UpdatedAt = s.now().UTC()
	s.data.accounts[id] = account
	return &account, nil
}

func (r *accountRepo) UpdateProfileImage(ctx context.Context, id uuid.UUID, imageURL *string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	account, ok := s.data.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	account.ProfileImageURL = imageURL
	account.UpdatedAt = s.now().UTC()
	s.data.accounts[id] = account
	return &account, nil
}

func (r *accountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	defer s.lock()()

	account, ok := s.data.accounts[id]
	if !ok {
		return nil
	}
	hash := passwordHash
	account.PasswordHash = &hash
	account.UpdatedAt = s.now().UTC()
	s.data.accounts[id] = account
	return nil
}

func (r *accountRepo) Search(ctx context.Context, term string, limit int) ([]domain.AccountSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	needle := strings.ToLower(term)
	results := make([]domain.AccountSearchResult, 0)
	for _, a := range s.data.accounts {
		if !strings.Contains(strings.ToLower(a.Username), needle) &&
			!strings.Contains(strings.ToLower(a.FirstName), needle) &&
			!strings.Contains(strings.ToLower(a.LastName), needle) {
			continue
		}
		results = append(results, domain.AccountSearchResult{
			ID:              a.ID,
			Username:        a.Username,
			FirstName:       a.FirstName,
			LastName:        a.LastName,
			ProfileImageURL: a.ProfileImageURL,
			CreatedAt:       a.CreatedAt,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].Username < results[j].Username
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

type resetTokenRepo struct {
	store *Store
}

func (r *resetTokenRepo) Create(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) (*domain.ResetToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	if _, exists := s.data.tokens[token]; exists {
		return nil, ports.ErrUniqueViolation
	}
	reset := domain.ResetToken{
		Token:     token,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: s.now().UTC(),
	}
	s.data.tokens[token] = reset
	return &reset, nil
}

func (r *resetTokenRepo) FindByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	defer s.lock()()

	reset, ok := s.data.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &reset, nil
}

func (r *resetTokenRepo) Claim(ctx context.Context, token string, now time.Time) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	s := r.store
	defer s.lock()()

	reset, ok := s.data.tokens[token]
	if !ok || !reset.ValidAt(now) {
		return uuid.Nil, sql.ErrNoRows
	}
	delete(s.data.tokens, token)
	return reset.AccountID, nil
}

func (r *resetTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	defer s.lock()()

	delete(s.data.tokens, token)
	return nil
}

func (r *resetTokenRepo) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s := r.store
	defer s.lock()()

	var n int64
	for key, reset := range s.data.tokens {
		if reset.AccountID == accountID {
			delete(s.data.tokens, key)
			n++
		}
	}
	return n, nil
}
