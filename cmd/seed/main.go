package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	env := getEnv("MYRELIQ_ENV", "dev")
	if env != "dev" && env != "test" {
		log.Fatalf("refusing to seed: MYRELIQ_ENV must be 'dev' or 'test' (got '%s')", env)
	}

	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	db := getEnv("POSTGRES_DB", "myreliq")
	user := getEnv("POSTGRES_USER", "myreliq")
	password := getEnv("POSTGRES_PASSWORD", "myreliq")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, db, sslmode)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	fmt.Println("Seeding database...")

	if err := seedUsers(ctx, pool); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	fmt.Println("✓ Users seeded")

	if err := seedProfiles(ctx, pool); err != nil {
		log.Fatalf("seed profiles: %v", err)
	}
	fmt.Println("✓ Profiles seeded")

	if err := seedExperience(ctx, pool); err != nil {
		log.Fatalf("seed experience: %v", err)
	}
	fmt.Println("✓ Identities, roles and milestones seeded")

	if os.Getenv("SEED_TESTDATA") == "1" {
		if err := seedTestData(ctx, pool); err != nil {
			log.Fatalf("seed test data: %v", err)
		}
		fmt.Println("✓ Test data seeded")
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Println("\nDemo Credentials:")
	fmt.Println("  Email: demo@example.com")
	fmt.Println("  Password: demo12345")
	fmt.Println("  Email: admin@example.com")
	fmt.Println("  Password: admin12345")
	fmt.Println("\nPublic portfolio: /api/portfolio/demo-user-seed1")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

var (
	demoUserID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	adminUserID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	identityID  = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	roleID      = uuid.MustParse("00000000-0000-0000-0000-000000000201")
)

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	params := security.Argon2Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}

	users := []struct {
		id       uuid.UUID
		email    string
		password string
		role     string
	}{
		{demoUserID, "demo@example.com", "demo12345", "USER"},
		{adminUserID, "admin@example.com", "admin12345", "ADMIN"},
	}

	for _, u := range users {
		hash, err := security.HashPassword(u.password, params)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.email, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, role, email_verified, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, now(), now())
			ON CONFLICT (email) DO UPDATE
			SET password_hash = EXCLUDED.password_hash,
			    role = EXCLUDED.role,
			    is_suspended = false,
			    updated_at = now()
		`, u.id, u.email, hash, u.role)
		if err != nil {
			return err
		}
	}

	return nil
}

func seedProfiles(ctx context.Context, pool *pgxpool.Pool) error {
	education, _ := json.Marshal([]map[string]string{
		{"school": "Example University", "degree": "BSc Computer Science", "startDate": "2015", "endDate": "2019"},
	})
	socials, _ := json.Marshal(map[string]string{"github": "demo-user"})

	_, err := pool.Exec(ctx, `
		INSERT INTO profiles (user_id, share_slug, full_name, headline, bio, interests, skills, education, socials, completion_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, now(), now())
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    headline = EXCLUDED.headline,
		    updated_at = now()
	`, demoUserID, "demo-user-seed1", "Demo User", "Full-stack engineer",
		"Builds things for the demo.", []string{"distributed systems"}, []string{"go", "sql"},
		education, socials, 60)
	return err
}

func seedExperience(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO identities (id, user_id, name, slug, description, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    updated_at = now()
	`, identityID, demoUserID, "Engineering", "engineering", "Software engineering work")
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO roles (id, user_id, identity_id, title, organization, start_date, description, work_mode, tags, links, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    updated_at = now()
	`, roleID, demoUserID, identityID, "Senior Engineer", "Example Corp",
		time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), "Built the main product.",
		"remote", []string{"go", "postgres"}, []string{})
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO milestones (id, user_id, role_id, title, description, achieved_at, metric_label, metric_value, links, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    updated_at = now()
	`, uuid.MustParse("00000000-0000-0000-0000-000000000301"), demoUserID, roleID,
		"Shipped v1", "Led the first production release.",
		time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), "uptime", "99.9%", []string{})
	return err
}
