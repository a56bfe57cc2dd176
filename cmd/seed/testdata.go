package main

import (
	"context"

	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// seedTestData adds the edge-case accounts the integration tests lean on:
// a suspended user and a superadmin. Only runs with SEED_TESTDATA=1.
func seedTestData(ctx context.Context, pool *pgxpool.Pool) error {
	suspendedID := uuid.MustParse("00000000-0000-0000-0000-000000000003")
	superadminID := uuid.MustParse("00000000-0000-0000-0000-000000000004")

	params := security.Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}

	suspendedHash, err := security.HashPassword("suspended123", params)
	if err != nil {
		return err
	}
	superadminHash, err := security.HashPassword("super12345", params)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, is_suspended, created_at, updated_at)
		VALUES ($1, $2, $3, 'USER', true, now(), now())
		ON CONFLICT (email) DO UPDATE
		SET is_suspended = true,
		    updated_at = now()
	`, suspendedID, "suspended@example.com", suspendedHash)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, 'SUPERADMIN', now(), now())
		ON CONFLICT (email) DO UPDATE
		SET role = 'SUPERADMIN',
		    updated_at = now()
	`, superadminID, "super@example.com", superadminHash)
	if err != nil {
		return err
	}

	// A pending credential for the demo user, for exercising status changes.
	_, err = pool.Exec(ctx, `
		INSERT INTO credentials (id, user_id, title, metadata_uri, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', now(), now())
		ON CONFLICT (id) DO NOTHING
	`, uuid.MustParse("00000000-0000-0000-0000-000000000401"), demoUserID,
		"Certified Example Professional", "ipfs://example-credential")
	return err
}
