package util

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost, 2)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hasher := newTestHasher()
	ctx := context.Background()

	digest, err := hasher.Hash(ctx, "secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "" || digest == "secret1" {
		t.Fatalf("expected opaque digest, got %q", digest)
	}
	if !hasher.Verify(ctx, "secret1", digest) {
		t.Fatalf("expected password verification to succeed")
	}
	if hasher.Verify(ctx, "secret2", digest) {
		t.Fatalf("expected password verification to fail for wrong password")
	}

	again, err := hasher.Hash(ctx, "secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if again == digest {
		t.Fatalf("expected salted digests to differ")
	}
}

func TestHashPasswordEmptyInput(t *testing.T) {
	if _, err := newTestHasher().Hash(context.Background(), ""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	hasher := newTestHasher()
	for _, digest := range []string{"", "not-a-bcrypt-hash", "$2a$10$short"} {
		if hasher.Verify(context.Background(), "secret1", digest) {
			t.Fatalf("expected false for malformed digest %q", digest)
		}
	}
}

func TestVerifyCancelledContext(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost, 1)
	digest, err := hasher.Hash(context.Background(), "secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Hold the only slot so both calls have to wait on the cancelled context.
	_ = hasher.slots.Acquire(context.Background(), 1)
	defer hasher.slots.Release(1)
	if hasher.Verify(ctx, "secret1", digest) {
		t.Fatalf("expected verify to fail closed on cancelled context")
	}
	if _, err := hasher.Hash(ctx, "secret1"); err == nil {
		t.Fatalf("expected hash to fail on cancelled context")
	}
}

func TestVerifyDummyAlwaysFalse(t *testing.T) {
	hasher := newTestHasher()
	if hasher.VerifyDummy(context.Background(), "anything") {
		t.Fatalf("expected dummy verification to fail")
	}
}

func TestVerifyDummyOnlyVerifies(t *testing.T) {
	hasher := newTestHasher()
	if hasher.dummy == "" {
		t.Fatalf("expected dummy digest to be prepared at construction")
	}
	if cost, err := bcrypt.Cost([]byte(hasher.dummy)); err != nil || cost != hasher.Cost() {
		t.Fatalf("expected dummy digest at cost %d, got %d (%v)", hasher.Cost(), cost, err)
	}

	var ops []string
	hasher.Observe(func(op string, _ time.Duration) {
		ops = append(ops, op)
	})
	hasher.VerifyDummy(context.Background(), "anything")
	if len(ops) != 1 || ops[0] != "verify" {
		t.Fatalf("expected a single verify on the first miss, got %v", ops)
	}
}

func TestCostFallsBackToDefault(t *testing.T) {
	if got := NewPasswordHasher(0, 1).Cost(); got != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, got)
	}
	if got := NewPasswordHasher(bcrypt.MaxCost+1, 1).Cost(); got != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, got)
	}
}

func TestConcurrentHashingDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	hasher := newTestHasher()
	var observed int
	var mu sync.Mutex
	hasher.Observe(func(op string, elapsed time.Duration) {
		mu.Lock()
		observed++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			digest, err := hasher.Hash(context.Background(), "secret1")
			if err != nil {
				t.Errorf("Hash returned error: %v", err)
				return
			}
			if !hasher.Verify(context.Background(), "secret1", digest) {
				t.Errorf("expected verify to succeed")
			}
		}()
	}
	wg.Wait()

	if observed != 16 {
		t.Fatalf("expected 16 observations, got %d", observed)
	}
}
