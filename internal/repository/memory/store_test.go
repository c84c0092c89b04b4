package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/lighthouse-api/internal/domain"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
)

func strPtr(s string) *string { return &s }

func TestAccountsUniqueUsername(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Accounts().Create(ctx, &domain.Account{Username: "alice", FirstName: "Alice", LastName: "L", PasswordHash: strPtr("h")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = store.Accounts().Create(ctx, &domain.Account{Username: "alice", FirstName: "Other", LastName: "A"})
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)

	_, err = store.Accounts().FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a, err := store.Accounts().Create(ctx, &domain.Account{Username: "alice", FirstName: "Alice", LastName: "L"})
	require.NoError(t, err)
	_, err = store.Accounts().Create(ctx, &domain.Account{Username: "bob", FirstName: "Bob", LastName: "S"})
	require.NoError(t, err)

	_, err = store.Accounts().UpdateProfile(ctx, a.ID, domain.AccountProfile{Username: "bob", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)

	updated, err := store.Accounts().UpdateProfile(ctx, a.ID, domain.AccountProfile{Username: "alice", FirstName: "Al", LastName: "Lid"})
	require.NoError(t, err)
	assert.Equal(t, "Al Lid", updated.DisplayName())
}

func TestUpdateProfileKeepImageAndImageOnlyUpdate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a, err := store.Accounts().Create(ctx, &domain.Account{Username: "alice", FirstName: "Alice", LastName: "L"})
	require.NoError(t, err)

	withImage, err := store.Accounts().UpdateProfileImage(ctx, a.ID, strPtr("https://cdn.example.com/a.png"))
	require.NoError(t, err)
	assert.Equal(t, "alice", withImage.Username)
	assert.Equal(t, "Alice", withImage.FirstName)

	kept, err := store.Accounts().UpdateProfile(ctx, a.ID, domain.AccountProfile{
		Username: "alice2", FirstName: "Al", LastName: "L", ProfileImageURL: nil, KeepImage: true,
	})
	require.NoError(t, err)
	require.NotNil(t, kept.ProfileImageURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *kept.ProfileImageURL)

	cleared, err := store.Accounts().UpdateProfile(ctx, a.ID, domain.AccountProfile{Username: "alice2", FirstName: "Al", LastName: "L"})
	require.NoError(t, err)
	assert.Nil(t, cleared.ProfileImageURL)

	_, err = store.Accounts().UpdateProfileImage(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSearchOrdersByCreationAndLimits(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store := NewStore().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	for _, name := range []string{"zed_user", "amy_user", "bob"} {
		_, err := store.Accounts().Create(ctx, &domain.Account{Username: name, FirstName: "F", LastName: "L"})
		require.NoError(t, err)
	}

	got, err := store.Accounts().Search(ctx, "USER", 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "zed_user", got[0].Username)
	assert.Equal(t, "amy_user", got[1].Username)

	got, err = store.Accounts().Search(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestClaimIsSingleUse(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	accountID := uuid.New()
	now := time.Now()

	_, err := store.ResetTokens().Create(ctx, "digest", accountID, now.Add(time.Hour))
	require.NoError(t, err)

	got, err := store.ResetTokens().Claim(ctx, "digest", now)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)

	_, err = store.ResetTokens().Claim(ctx, "digest", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestClaimRejectsExpired(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now()

	_, err := store.ResetTokens().Create(ctx, "digest", uuid.New(), now)
	require.NoError(t, err)

	_, err = store.ResetTokens().Claim(ctx, "digest", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteByAccountLeavesOthers(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	bob, carol := uuid.New(), uuid.New()
	exp := time.Now().Add(time.Hour)

	for _, tok := range []string{"t1", "t2"} {
		_, err := store.ResetTokens().Create(ctx, tok, bob, exp)
		require.NoError(t, err)
	}
	_, err := store.ResetTokens().Create(ctx, "t3", carol, exp)
	require.NoError(t, err)

	n, err := store.ResetTokens().DeleteByAccount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = store.ResetTokens().FindByToken(ctx, "t3")
	assert.NoError(t, err)
}

func TestWithinTxDiscardsOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	accountID := uuid.New()
	_, err := store.ResetTokens().Create(ctx, "digest", accountID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(tx ports.Store) error {
		if _, err := tx.ResetTokens().DeleteByAccount(ctx, accountID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.ResetTokens().FindByToken(ctx, "digest")
	assert.NoError(t, err)
}

func TestWithinTxCommits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	a, err := store.Accounts().Create(ctx, &domain.Account{Username: "alice", FirstName: "A", LastName: "L", PasswordHash: strPtr("old")})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(tx ports.Store) error {
		return tx.Accounts().UpdatePassword(ctx, a.ID, "new")
	})
	require.NoError(t, err)

	got, err := store.Accounts().FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", *got.PasswordHash)
}

func TestConcurrentClaimsSucceedOnce(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, err := store.ResetTokens().Create(ctx, "digest", uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(tx ports.Store) error {
				_, err := tx.ResetTokens().Claim(ctx, "digest", time.Now())
				return err
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
