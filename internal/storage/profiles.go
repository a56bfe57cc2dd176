package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const profileColumns = `id, user_id, share_slug, full_name, headline, bio, location, profile_image, interests, skills, education, socials, mint_address, completion_score, created_at, updated_at`

// ProfileUpdate carries the writable profile fields for the upsert. Nil
// pointer fields keep their stored value untouched where the column allows it.
type ProfileUpdate struct {
	ShareSlug       *string     `json:"shareSlug"`
	FullName        string      `json:"fullName"`
	Headline        *string     `json:"headline"`
	Bio             *string     `json:"bio"`
	Location        *string     `json:"location"`
	ProfileImage    *string     `json:"profileImage"`
	Interests       []string    `json:"interests"`
	Skills          []string    `json:"skills"`
	Education       []Education `json:"education"`
	Socials         Socials     `json:"socials"`
	MintAddress     *string     `json:"mintAddress"`
	CompletionScore int         `json:"completionScore"`
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
	`, userID)
	return scanProfile(row)
}

func (s *Store) GetProfileBySlug(ctx context.Context, slug string) (*Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE share_slug = $1
	`, slug)
	return scanProfile(row)
}

func (s *Store) UpsertProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*Profile, error) {
	education, err := json.Marshal(orEmptyEducation(upd.Education))
	if err != nil {
		return nil, fmt.Errorf("marshal education: %w", err)
	}
	socials, err := json.Marshal(upd.Socials)
	if err != nil {
		return nil, fmt.Errorf("marshal socials: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, share_slug, full_name, headline, bio, location, profile_image, interests, skills, education, socials, mint_address, completion_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE
		SET share_slug = COALESCE(EXCLUDED.share_slug, profiles.share_slug),
		    full_name = EXCLUDED.full_name,
		    headline = EXCLUDED.headline,
		    bio = EXCLUDED.bio,
		    location = EXCLUDED.location,
		    profile_image = EXCLUDED.profile_image,
		    interests = EXCLUDED.interests,
		    skills = EXCLUDED.skills,
		    education = EXCLUDED.education,
		    socials = EXCLUDED.socials,
		    mint_address = COALESCE(EXCLUDED.mint_address, profiles.mint_address),
		    completion_score = EXCLUDED.completion_score,
		    updated_at = now()
		RETURNING `+profileColumns+`
	`, userID, upd.ShareSlug, upd.FullName, upd.Headline, upd.Bio, upd.Location, upd.ProfileImage,
		orEmpty(upd.Interests), orEmpty(upd.Skills), education, socials, upd.MintAddress, upd.CompletionScore)
	return scanProfile(row)
}

func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p         Profile
		education []byte
		socials   []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.ShareSlug,
		&p.FullName,
		&p.Headline,
		&p.Bio,
		&p.Location,
		&p.ProfileImage,
		&p.Interests,
		&p.Skills,
		&education,
		&socials,
		&p.MintAddress,
		&p.CompletionScore,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	decodeProfileJSON(&p, education, socials)
	return &p, nil
}

func decodeProfileJSON(p *Profile, education, socials []byte) {
	if len(education) > 0 {
		_ = json.Unmarshal(education, &p.Education)
	}
	if len(socials) > 0 {
		_ = json.Unmarshal(socials, &p.Socials)
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
}

// prefixed qualifies a comma-separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, col := range parts {
		parts[i] = alias + "." + col
	}
	return strings.Join(parts, ", ")
}

func orEmpty(vals []string) []string {
	if vals == nil {
		return []string{}
	}
	return vals
}

func orEmptyEducation(vals []Education) []Education {
	if vals == nil {
		return []Education{}
	}
	return vals
}
