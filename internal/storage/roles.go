package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const roleColumns = `id, user_id, identity_id, title, organization, start_date, end_date, description, work_mode, tags, links, is_public, created_at, updated_at`

type RoleInput struct {
	IdentityID   uuid.UUID  `json:"identityId"`
	Title        string     `json:"title"`
	Organization string     `json:"organization"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Description  string     `json:"description"`
	WorkMode     WorkMode   `json:"workMode"`
	Tags         []string   `json:"tags"`
	Links        []string   `json:"links"`
	IsPublic     *bool      `json:"isPublic"`
}

func (s *Store) ListRoles(ctx context.Context, userID uuid.UUID, identityID *uuid.UUID) ([]Role, error) {
	query := `
		SELECT ` + roleColumns + `
		FROM roles
		WHERE user_id = $1`
	args := []any{userID}
	if identityID != nil {
		query += ` AND identity_id = $2`
		args = append(args, *identityID)
	}
	query += ` ORDER BY start_date DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *role)
	}
	return items, rows.Err()
}

func (s *Store) ListPublicRolesByUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE user_id = $1 AND is_public
		ORDER BY start_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *role)
	}
	return items, rows.Err()
}

func (s *Store) CreateRole(ctx context.Context, userID uuid.UUID, in RoleInput) (*Role, error) {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO roles (user_id, identity_id, title, organization, start_date, end_date, description, work_mode, tags, links, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+roleColumns+`
	`, userID, in.IdentityID, in.Title, in.Organization, in.StartDate, in.EndDate, in.Description, in.WorkMode,
		orEmpty(in.Tags), orEmpty(in.Links), isPublic)
	return scanRole(row)
}

func (s *Store) UpdateRole(ctx context.Context, userID, id uuid.UUID, in RoleInput) (*Role, error) {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE roles
		SET title = $3,
		    organization = $4,
		    start_date = $5,
		    end_date = $6,
		    description = $7,
		    work_mode = $8,
		    tags = $9,
		    links = $10,
		    is_public = $11,
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+roleColumns+`
	`, id, userID, in.Title, in.Organization, in.StartDate, in.EndDate, in.Description, in.WorkMode,
		orEmpty(in.Tags), orEmpty(in.Links), isPublic)
	return scanRole(row)
}

func (s *Store) DeleteRole(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM roles
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanRole(row rowScanner) (*Role, error) {
	var role Role
	if err := row.Scan(
		&role.ID,
		&role.UserID,
		&role.IdentityID,
		&role.Title,
		&role.Organization,
		&role.StartDate,
		&role.EndDate,
		&role.Description,
		&role.WorkMode,
		&role.Tags,
		&role.Links,
		&role.IsPublic,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if role.Tags == nil {
		role.Tags = []string{}
	}
	if role.Links == nil {
		role.Links = []string{}
	}
	return &role, nil
}
