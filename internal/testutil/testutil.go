// Package testutil holds helpers for tests that exercise a real postgres
// instance. Tests using it must call SetupTestDB and skip when it reports
// the database is unavailable, so the unit suite stays self-contained.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestArgon2 is deliberately weak; integration tests hash many passwords.
var TestArgon2 = security.Argon2Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// SetupTestDB connects to the database named by the POSTGRES_* env vars and
// skips the test when MYRELIQ_TEST_DB is not set.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("MYRELIQ_TEST_DB") == "" {
		t.Skip("MYRELIQ_TEST_DB not set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "myreliq"),
		getEnv("POSTGRES_PASSWORD", "myreliq"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "myreliq_test"),
		getEnv("POSTGRES_SSLMODE", "disable"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping test db: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// CleanupTestData truncates everything in dependency order. Sessions and
// portfolio rows cascade from users.
func CleanupTestData(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("cleanup users: %w", err)
	}
	return nil
}

// SeedUser inserts a user with a real argon2id hash and returns it.
// CreateUser always inserts USER, so other roles are promoted directly.
func SeedUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, store *storage.Store, email, password string, role storage.UserRole) *storage.User {
	t.Helper()
	hash, err := security.HashPassword(password, TestArgon2)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := store.CreateUser(ctx, email, hash, nil, nil)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	if role != storage.RoleUser {
		if _, err := pool.Exec(ctx, "UPDATE users SET role = $1 WHERE id = $2", role, user.ID); err != nil {
			t.Fatalf("promote user: %v", err)
		}
		user.Role = role
	}
	return user
}

// MakeRequest drives a router with a JSON body and optional cookies.
func MakeRequest(router *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
