package storage

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, username, wallet_address, first_name, last_name, role, email_verified, is_suspended, created_at, updated_at`

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, firstName, lastName *string) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns+`
	`, email, passwordHash, firstName, lastName)
	return scanUser(row)
}

func (s *Store) SetUserSuspended(ctx context.Context, id uuid.UUID, suspended bool) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET is_suspended = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, suspended)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var user User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Username,
		&user.WalletAddress,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.EmailVerified,
		&user.IsSuspended,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
