package storage

import (
	"context"

	"github.com/google/uuid"
)

const credentialColumns = `id, user_id, organization_id, title, description, metadata_uri, mint_address, status, created_at, updated_at`

type CredentialInput struct {
	OrganizationID *string          `json:"organizationId"`
	Title          string           `json:"title"`
	Description    *string          `json:"description"`
	MetadataURI    string           `json:"metadataUri"`
	MintAddress    *string          `json:"mintAddress"`
	Status         CredentialStatus `json:"status"`
}

func (s *Store) ListCredentials(ctx context.Context, userID uuid.UUID) ([]Credential, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Credential{}
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *cred)
	}
	return items, rows.Err()
}

func (s *Store) CreateCredential(ctx context.Context, userID uuid.UUID, in CredentialInput) (*Credential, error) {
	status := in.Status
	if status == "" {
		status = CredentialPending
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO credentials (user_id, organization_id, title, description, metadata_uri, mint_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+credentialColumns+`
	`, userID, in.OrganizationID, in.Title, in.Description, in.MetadataURI, in.MintAddress, status)
	return scanCredential(row)
}

func (s *Store) UpdateCredential(ctx context.Context, userID, id uuid.UUID, in CredentialInput) (*Credential, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE credentials
		SET organization_id = $3,
		    title = $4,
		    description = $5,
		    metadata_uri = $6,
		    mint_address = COALESCE($7, mint_address),
		    status = $8,
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+credentialColumns+`
	`, id, userID, in.OrganizationID, in.Title, in.Description, in.MetadataURI, in.MintAddress, in.Status)
	return scanCredential(row)
}

func (s *Store) DeleteCredential(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM credentials
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanCredential(row rowScanner) (*Credential, error) {
	var cred Credential
	if err := row.Scan(
		&cred.ID,
		&cred.UserID,
		&cred.OrganizationID,
		&cred.Title,
		&cred.Description,
		&cred.MetadataURI,
		&cred.MintAddress,
		&cred.Status,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}
