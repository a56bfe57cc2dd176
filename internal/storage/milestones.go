package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const milestoneColumns = `id, user_id, role_id, title, description, achieved_at, metric_label, metric_value, media_url, links, created_at, updated_at`

type MilestoneInput struct {
	RoleID      uuid.UUID `json:"roleId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AchievedAt  time.Time `json:"achievedAt"`
	MetricLabel *string   `json:"metricLabel"`
	MetricValue *string   `json:"metricValue"`
	MediaURL    *string   `json:"mediaUrl"`
	Links       []string  `json:"links"`
}

func (s *Store) ListMilestones(ctx context.Context, userID uuid.UUID, roleID *uuid.UUID) ([]Milestone, error) {
	query := `
		SELECT ` + milestoneColumns + `
		FROM milestones
		WHERE user_id = $1`
	args := []any{userID}
	if roleID != nil {
		query += ` AND role_id = $2`
		args = append(args, *roleID)
	}
	query += ` ORDER BY achieved_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (s *Store) CreateMilestone(ctx context.Context, userID uuid.UUID, in MilestoneInput) (*Milestone, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO milestones (user_id, role_id, title, description, achieved_at, metric_label, metric_value, media_url, links)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+milestoneColumns+`
	`, userID, in.RoleID, in.Title, in.Description, in.AchievedAt, in.MetricLabel, in.MetricValue, in.MediaURL, orEmpty(in.Links))
	return scanMilestone(row)
}

func (s *Store) UpdateMilestone(ctx context.Context, userID, id uuid.UUID, in MilestoneInput) (*Milestone, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE milestones
		SET title = $3,
		    description = $4,
		    achieved_at = $5,
		    metric_label = $6,
		    metric_value = $7,
		    media_url = $8,
		    links = $9,
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+milestoneColumns+`
	`, id, userID, in.Title, in.Description, in.AchievedAt, in.MetricLabel, in.MetricValue, in.MediaURL, orEmpty(in.Links))
	return scanMilestone(row)
}

func (s *Store) DeleteMilestone(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM milestones
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanMilestone(row rowScanner) (*Milestone, error) {
	var m Milestone
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.RoleID,
		&m.Title,
		&m.Description,
		&m.AchievedAt,
		&m.MetricLabel,
		&m.MetricValue,
		&m.MediaURL,
		&m.Links,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if m.Links == nil {
		m.Links = []string{}
	}
	return &m, nil
}
