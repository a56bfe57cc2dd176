package storage

import (
	"context"
)

func (s *Store) ListProfilesWithUsers(ctx context.Context) ([]AdminUserRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+prefixed("p", profileColumns)+`, u.email, u.role, u.is_suspended, u.created_at
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []AdminUserRow{}
	for rows.Next() {
		var (
			row       AdminUserRow
			education []byte
			socials   []byte
		)
		p := &row.Profile
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.ShareSlug, &p.FullName, &p.Headline, &p.Bio, &p.Location, &p.ProfileImage,
			&p.Interests, &p.Skills, &education, &socials, &p.MintAddress, &p.CompletionScore, &p.CreatedAt, &p.UpdatedAt,
			&row.Email, &row.Role, &row.IsSuspended, &row.JoinedAt,
		); err != nil {
			return nil, err
		}
		decodeProfileJSON(p, education, socials)
		items = append(items, row)
	}
	return items, rows.Err()
}

func (s *Store) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	row := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM profiles),
			(SELECT count(*) FROM roles),
			(SELECT count(*) FROM milestones),
			(SELECT count(*) FROM profiles WHERE created_at >= date_trunc('day', now()))
	`)
	if err := row.Scan(&stats.ProfileCount, &stats.RoleCount, &stats.MilestoneCount, &stats.DailyProfileCount); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		ORDER BY created_at DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.RecentProfiles = []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		stats.RecentProfiles = append(stats.RecentProfiles, *p)
	}
	return &stats, rows.Err()
}
