package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/XaidenLabs/myreliq/internal/testutil"
	"github.com/jackc/pgx/v5"
)

// These tests run against a real database and skip unless MYRELIQ_TEST_DB
// is set. The schema must be migrated beforehand.

func TestRotateSessionConditional(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := storage.New(pool)
	t.Cleanup(func() { testutil.CleanupTestData(ctx, pool) })

	user := testutil.SeedUser(ctx, t, pool, store, "rotate@example.com", "password123", storage.RoleUser)

	oldHash := security.HashToken("first-token")
	newHash := security.HashToken("second-token")
	if _, err := store.CreateSession(ctx, user.ID, oldHash, nil, nil, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	sess, err := store.RotateSession(ctx, oldHash, newHash, nil, nil, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if sess.RefreshTokenHash != newHash {
		t.Errorf("hash after rotate = %q, want new hash", sess.RefreshTokenHash)
	}

	// The consumed hash no longer matches anything.
	if _, err := store.RotateSession(ctx, oldHash, security.HashToken("third"), nil, nil, time.Now().Add(time.Hour)); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("replayed rotation err = %v, want pgx.ErrNoRows", err)
	}
}

func TestRotateSessionConcurrent(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := storage.New(pool)
	t.Cleanup(func() { testutil.CleanupTestData(ctx, pool) })

	user := testutil.SeedUser(ctx, t, pool, store, "race@example.com", "password123", storage.RoleUser)

	oldHash := security.HashToken("contested-token")
	if _, err := store.CreateSession(ctx, user.ID, oldHash, nil, nil, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gen := security.DefaultTokenGenerator{}
			_, hash, err := gen.New()
			if err != nil {
				t.Errorf("token gen: %v", err)
				return
			}
			if _, err := store.RotateSession(ctx, oldHash, hash, nil, nil, time.Now().Add(time.Hour)); err == nil {
				wins <- struct{}{}
			} else if !errors.Is(err, pgx.ErrNoRows) {
				t.Errorf("unexpected rotate error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	if n := len(wins); n != 1 {
		t.Errorf("concurrent rotations succeeded %d times, want exactly 1", n)
	}
}

func TestRotateExpiredAndRevoked(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := storage.New(pool)
	t.Cleanup(func() { testutil.CleanupTestData(ctx, pool) })

	user := testutil.SeedUser(ctx, t, pool, store, "dead@example.com", "password123", storage.RoleUser)

	expiredHash := security.HashToken("expired-token")
	if _, err := store.CreateSession(ctx, user.ID, expiredHash, nil, nil, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create expired session: %v", err)
	}
	if _, err := store.RotateSession(ctx, expiredHash, security.HashToken("x"), nil, nil, time.Now().Add(time.Hour)); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("expired rotation err = %v, want pgx.ErrNoRows", err)
	}

	revokedHash := security.HashToken("revoked-token")
	if _, err := store.CreateSession(ctx, user.ID, revokedHash, nil, nil, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.RevokeSessionByHash(ctx, revokedHash); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := store.RotateSession(ctx, revokedHash, security.HashToken("y"), nil, nil, time.Now().Add(time.Hour)); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("revoked rotation err = %v, want pgx.ErrNoRows", err)
	}

	// Revoking twice is a no-op, not an error.
	if err := store.RevokeSessionByHash(ctx, revokedHash); err != nil {
		t.Errorf("second revoke: %v", err)
	}
}

func TestRevokeAllSessions(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := storage.New(pool)
	t.Cleanup(func() { testutil.CleanupTestData(ctx, pool) })

	user := testutil.SeedUser(ctx, t, pool, store, "many@example.com", "password123", storage.RoleUser)
	hashes := []string{security.HashToken("a"), security.HashToken("b"), security.HashToken("c")}
	for _, h := range hashes {
		if _, err := store.CreateSession(ctx, user.ID, h, nil, nil, time.Now().Add(time.Hour)); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	if err := store.RevokeAllSessions(ctx, user.ID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	for _, h := range hashes {
		if _, err := store.RotateSession(ctx, h, security.HashToken("n"+h), nil, nil, time.Now().Add(time.Hour)); !errors.Is(err, pgx.ErrNoRows) {
			t.Errorf("rotation after revoke-all err = %v, want pgx.ErrNoRows", err)
		}
	}
}
