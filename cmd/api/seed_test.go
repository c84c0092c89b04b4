package main

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/njprem/lighthouse-api/internal/repository/memory"
	"github.com/njprem/lighthouse-api/internal/service"
	"github.com/njprem/lighthouse-api/internal/util"
)

func TestSeedAccountsIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	auth := service.NewAuthService(store, util.NewPasswordHasher(bcrypt.MinCost, 0),
		util.NewSessionManager("seed-secret", 0), nil, nil, nil, service.AuthServiceConfig{})
	ctx := context.Background()

	created, err := seedAccounts(ctx, auth, 3)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 accounts, got %d", created)
	}

	created, err = seedAccounts(ctx, auth, 3)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected reseed to skip existing accounts, created %d", created)
	}

	result, err := auth.Login(ctx, "user002", seedPassword)
	if err != nil {
		t.Fatalf("login seeded user: %v", err)
	}
	if result.Claim.Username != "user002" {
		t.Fatalf("unexpected claim %+v", result.Claim)
	}
}
