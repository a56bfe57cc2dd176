package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/XaidenLabs/myreliq/internal/cookies"
	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var guardSecret = []byte("guard-test-secret")

type userLoaderStub struct {
	users map[uuid.UUID]*storage.User
	err   error
}

func (s *userLoaderStub) GetUserByID(_ context.Context, id uuid.UUID) (*storage.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func stubWithUser(u *storage.User) *userLoaderStub {
	return &userLoaderStub{users: map[uuid.UUID]*storage.User{u.ID: u}}
}

func testUser(role storage.UserRole, suspended bool) *storage.User {
	return &storage.User{
		ID:          uuid.New(),
		Email:       "who@example.com",
		Role:        role,
		IsSuspended: suspended,
	}
}

func accessCookieFor(t *testing.T, u *storage.User) *http.Cookie {
	t.Helper()
	token, err := security.NewAccessToken(u.ID.String(), string(u.Role), guardSecret, 15*time.Minute, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: cookies.AccessCookie, Value: token}
}

func get(r http.Handler, path string, reqCookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range reqCookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func routerWith(mw gin.HandlerFunc, paths ...string) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	if len(paths) == 0 {
		paths = []string{"/api/thing"}
	}
	for _, p := range paths {
		r.GET(p, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	}
	return r
}

func TestRequireUser(t *testing.T) {
	user := testUser(storage.RoleUser, false)
	g := New(stubWithUser(user), guardSecret)
	r := routerWith(g.RequireUser())

	if w := get(r, "/api/thing"); w.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want 401", w.Code)
	}
	if w := get(r, "/api/thing", accessCookieFor(t, user)); w.Code != http.StatusOK {
		t.Errorf("valid cookie: status = %d, want 200", w.Code)
	}
	bad := &http.Cookie{Name: cookies.AccessCookie, Value: "garbage"}
	if w := get(r, "/api/thing", bad); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage cookie: status = %d, want 401", w.Code)
	}
}

func TestRequireUserSuspended(t *testing.T) {
	user := testUser(storage.RoleUser, true)
	g := New(stubWithUser(user), guardSecret)
	r := routerWith(g.RequireUser())

	if w := get(r, "/api/thing", accessCookieFor(t, user)); w.Code != http.StatusUnauthorized {
		t.Errorf("suspended user: status = %d, want 401", w.Code)
	}
}

func TestRequireUserDeletedAfterIssuance(t *testing.T) {
	user := testUser(storage.RoleUser, false)
	g := New(&userLoaderStub{users: map[uuid.UUID]*storage.User{}}, guardSecret)
	r := routerWith(g.RequireUser())

	// Token is valid but the subject no longer exists.
	if w := get(r, "/api/thing", accessCookieFor(t, user)); w.Code != http.StatusUnauthorized {
		t.Errorf("deleted user: status = %d, want 401", w.Code)
	}
}

func TestRequireUserStoreFailure(t *testing.T) {
	user := testUser(storage.RoleUser, false)
	g := New(&userLoaderStub{err: errors.New("connection refused")}, guardSecret)
	r := routerWith(g.RequireUser())

	if w := get(r, "/api/thing", accessCookieFor(t, user)); w.Code != http.StatusInternalServerError {
		t.Errorf("store failure: status = %d, want 500", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	admin := testUser(storage.RoleAdmin, false)
	plain := testUser(storage.RoleUser, false)
	loader := &userLoaderStub{users: map[uuid.UUID]*storage.User{
		admin.ID: admin,
		plain.ID: plain,
	}}
	g := New(loader, guardSecret)
	r := routerWith(g.RequireRole(storage.RoleAdmin, storage.RoleSuperadmin))

	if w := get(r, "/api/thing", accessCookieFor(t, admin)); w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}
	if w := get(r, "/api/thing", accessCookieFor(t, plain)); w.Code != http.StatusUnauthorized {
		t.Errorf("plain user: status = %d, want 401", w.Code)
	}
}

func TestRequirePageUserRedirects(t *testing.T) {
	user := testUser(storage.RoleUser, false)
	g := New(stubWithUser(user), guardSecret)
	r := routerWith(g.RequirePageUser(), "/dashboard")

	w := get(r, "/dashboard")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/auth/login" {
		t.Errorf("anonymous: got %d -> %q", w.Code, w.Header().Get("Location"))
	}

	if w := get(r, "/dashboard", accessCookieFor(t, user)); w.Code != http.StatusOK {
		t.Errorf("authenticated: status = %d, want 200", w.Code)
	}
}

func TestRequirePageUserSuspendedRedirect(t *testing.T) {
	user := testUser(storage.RoleUser, true)
	g := New(stubWithUser(user), guardSecret)
	r := routerWith(g.RequirePageUser(), "/dashboard")

	w := get(r, "/dashboard", accessCookieFor(t, user))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/auth/login?status=suspended" {
		t.Errorf("suspended: got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestRequirePageRole(t *testing.T) {
	plain := testUser(storage.RoleUser, false)
	g := New(stubWithUser(plain), guardSecret)
	r := routerWith(g.RequirePageRole(storage.RoleAdmin), "/admin")

	w := get(r, "/admin", accessCookieFor(t, plain))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/auth/login" {
		t.Errorf("wrong role: got %d -> %q", w.Code, w.Header().Get("Location"))
	}
}

func TestUserFromContext(t *testing.T) {
	user := testUser(storage.RoleUser, false)
	g := New(stubWithUser(user), guardSecret)

	r := gin.New()
	r.Use(g.RequireUser())
	r.GET("/api/whoami", func(c *gin.Context) {
		got, ok := UserFromContext(c)
		if !ok || got.ID != user.ID {
			t.Errorf("UserFromContext = %v, %v", got, ok)
		}
		c.Status(http.StatusOK)
	})

	if w := get(r, "/api/whoami", accessCookieFor(t, user)); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestEdgeRedirect(t *testing.T) {
	r := gin.New()
	r.Use(EdgeRedirect())
	for _, p := range []string{"/dashboard", "/auth/login", "/api/auth/me", "/", "/healthz"} {
		r.GET(p, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	// Presence only: any non-empty cookie passes the edge, even garbage.
	cookie := &http.Cookie{Name: cookies.AccessCookie, Value: "not-verified-here"}

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		code     int
		location string
	}{
		{"anon protected", "/dashboard", nil, http.StatusFound, "/auth/login"},
		{"anon auth page", "/auth/login", nil, http.StatusOK, ""},
		{"cookie protected", "/dashboard", cookie, http.StatusOK, ""},
		{"cookie auth page", "/auth/login", cookie, http.StatusFound, "/dashboard"},
		{"anon root", "/", nil, http.StatusOK, ""},
		{"api exempt", "/api/auth/me", nil, http.StatusOK, ""},
		{"health exempt", "/healthz", nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		var w *httptest.ResponseRecorder
		if tt.cookie != nil {
			w = get(r, tt.path, tt.cookie)
		} else {
			w = get(r, tt.path)
		}
		if w.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.code)
			continue
		}
		if tt.location != "" && w.Header().Get("Location") != tt.location {
			t.Errorf("%s: location = %q, want %q", tt.name, w.Header().Get("Location"), tt.location)
		}
	}
}
