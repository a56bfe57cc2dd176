package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const sessionColumns = `id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, revoked_at, created_at, updated_at`

func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID, tokenHash string, userAgent, ipAddress *string, expiresAt time.Time) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, refresh_token_hash, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+sessionColumns+`
	`, userID, tokenHash, userAgent, ipAddress, expiresAt)
	return scanSession(row)
}

// RotateSession swaps the stored hash in a single conditional update so two
// concurrent rotations of the same token cannot both succeed. No row matches
// when the token is unknown, already rotated, revoked, or expired; the caller
// must treat that as a dead session.
func (s *Store) RotateSession(ctx context.Context, oldHash, newHash string, userAgent, ipAddress *string, expiresAt time.Time) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE sessions
		SET refresh_token_hash = $2,
		    user_agent = COALESCE($3, user_agent),
		    ip_address = COALESCE($4, ip_address),
		    expires_at = $5,
		    updated_at = now()
		WHERE refresh_token_hash = $1
		  AND revoked_at IS NULL
		  AND expires_at > now()
		RETURNING `+sessionColumns+`
	`, oldHash, newHash, userAgent, ipAddress, expiresAt)
	return scanSession(row)
}

// RevokeSessionByHash is idempotent: revoking an unknown or already revoked
// token is a no-op.
func (s *Store) RevokeSessionByHash(ctx context.Context, tokenHash string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = now(), updated_at = now()
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL
	`, tokenHash)
	return err
}

func (s *Store) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = now(), updated_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)
	return err
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	if err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.RefreshTokenHash,
		&sess.UserAgent,
		&sess.IPAddress,
		&sess.ExpiresAt,
		&sess.RevokedAt,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sess, nil
}
