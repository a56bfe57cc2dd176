package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateSlug maps the unique (user_id, slug) violation so handlers can
// retry with a suffixed slug.
var ErrDuplicateSlug = errors.New("duplicate slug")

const identityColumns = `id, user_id, name, slug, description, profile_image, is_primary, mint_address, metadata_uri, created_at, updated_at`

type IdentityInput struct {
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  *string `json:"description"`
	ProfileImage *string `json:"profileImage"`
	IsPrimary    bool    `json:"isPrimary"`
}

func (s *Store) ListIdentities(ctx context.Context, userID uuid.UUID) ([]Identity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Identity{}
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ident)
	}
	return items, rows.Err()
}

func (s *Store) GetIdentityBySlug(ctx context.Context, userID uuid.UUID, slug string) (*Identity, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM identities
		WHERE user_id = $1 AND slug = $2
	`, userID, slug)
	return scanIdentity(row)
}

func (s *Store) CreateIdentity(ctx context.Context, userID uuid.UUID, in IdentityInput) (*Identity, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO identities (user_id, name, slug, description, profile_image, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+identityColumns+`
	`, userID, in.Name, in.Slug, in.Description, in.ProfileImage, in.IsPrimary)
	ident, err := scanIdentity(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return ident, nil
}

func (s *Store) UpdateIdentity(ctx context.Context, userID, id uuid.UUID, in IdentityInput, mintAddress, metadataURI *string) (*Identity, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE identities
		SET name = $3,
		    description = $4,
		    profile_image = $5,
		    is_primary = $6,
		    mint_address = COALESCE($7, mint_address),
		    metadata_uri = COALESCE($8, metadata_uri),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+identityColumns+`
	`, id, userID, in.Name, in.Description, in.ProfileImage, in.IsPrimary, mintAddress, metadataURI)
	return scanIdentity(row)
}

func (s *Store) DeleteIdentity(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM identities
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanIdentity(row rowScanner) (*Identity, error) {
	var ident Identity
	if err := row.Scan(
		&ident.ID,
		&ident.UserID,
		&ident.Name,
		&ident.Slug,
		&ident.Description,
		&ident.ProfileImage,
		&ident.IsPrimary,
		&ident.MintAddress,
		&ident.MetadataURI,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ident, nil
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
