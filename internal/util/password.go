package util

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const DefaultBcryptCost = 12

var ErrEmptyPassword = errors.New("password cannot be empty")

// HashObserver receives the duration of every hash or verify call.
type HashObserver func(op string, elapsed time.Duration)

// PasswordHasher wraps bcrypt and caps how many hashes run at once so that
// CPU-bound work cannot starve request handling.
type PasswordHasher struct {
	cost     int
	slots    *semaphore.Weighted
	observer HashObserver
	// dummy is verified against when no real digest exists.
	dummy string
}

func NewPasswordHasher(cost, concurrency int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(concurrency)),
		dummy: dummyDigest(cost),
	}
}

// dummyDigest hashes a random secret so misses cost one bcrypt compare at the
// configured cost from the first call on.
func dummyDigest(cost int) string {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return ""
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(base64.RawStdEncoding.EncodeToString(secret)), cost)
	if err != nil {
		return ""
	}
	return string(digest)
}

// Observe installs a callback used for latency metrics.
func (h *PasswordHasher) Observe(fn HashObserver) {
	h.observer = fn
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	started := time.Now()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	h.observe("hash", started)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Malformed digests, empty
// input and cancelled contexts all yield false.
func (h *PasswordHasher) Verify(ctx context.Context, password, digest string) bool {
	if password == "" || digest == "" {
		return false
	}
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.slots.Release(1)

	started := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	h.observe("verify", started)
	return err == nil
}

// VerifyDummy burns the same amount of work as a real Verify against a
// digest nobody knows the password of. It always returns false.
func (h *PasswordHasher) VerifyDummy(ctx context.Context, password string) bool {
	if h.dummy == "" {
		return false
	}
	h.Verify(ctx, password, h.dummy)
	return false
}

func (h *PasswordHasher) observe(op string, started time.Time) {
	if h.observer != nil {
		h.observer(op, time.Since(started))
	}
}
