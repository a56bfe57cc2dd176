package storage

import (
	"context"

	"github.com/google/uuid"
)

const versionColumns = `id, user_id, version, json_hash, solana_tx, is_public, created_at`

// CreatePortfolioVersion appends the next version for the user. The version
// number is assigned inside the insert so concurrent publishes cannot collide
// on the (user_id, version) unique index without one of them failing cleanly.
func (s *Store) CreatePortfolioVersion(ctx context.Context, userID uuid.UUID, jsonHash string, solanaTx *string, isPublic bool) (*PortfolioVersion, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO portfolio_versions (user_id, version, json_hash, solana_tx, is_public)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4
		FROM portfolio_versions
		WHERE user_id = $1
		RETURNING `+versionColumns+`
	`, userID, jsonHash, solanaTx, isPublic)
	return scanVersion(row)
}

func (s *Store) ListPortfolioVersions(ctx context.Context, userID uuid.UUID) ([]PortfolioVersion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+versionColumns+`
		FROM portfolio_versions
		WHERE user_id = $1
		ORDER BY version DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []PortfolioVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

func scanVersion(row rowScanner) (*PortfolioVersion, error) {
	var v PortfolioVersion
	if err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Version,
		&v.JSONHash,
		&v.SolanaTx,
		&v.IsPublic,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
