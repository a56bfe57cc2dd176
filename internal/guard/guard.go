// Package guard is the authoritative tier of request authentication: it
// verifies the access token and loads the user record, unlike the edge tier
// which only checks cookie presence.
package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/XaidenLabs/myreliq/internal/cookies"
	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ContextUserKey = "auth_user"

type UserLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*storage.User, error)
}

type Guard struct {
	Store  UserLoader
	Secret []byte
}

func New(store UserLoader, secret []byte) *Guard {
	return &Guard{Store: store, Secret: secret}
}

// CurrentUser resolves the caller from the access cookie. A missing, invalid
// or expired token, or a user deleted after issuance, all resolve to nil
// without error; only unexpected store failures surface as errors.
func (g *Guard) CurrentUser(c *gin.Context) (*storage.User, error) {
	token := cookies.AccessToken(c)
	if token == "" {
		return nil, nil
	}

	claims, err := security.ParseAccessToken(token, g.Secret)
	if err != nil {
		return nil, nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil
	}

	user, err := g.Store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RequireUser gates API routes: 401 when unauthenticated or suspended.
func (g *Guard) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := g.CurrentUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if user == nil || user.IsSuspended {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRole wraps RequireUser semantics and additionally rejects callers
// whose role is outside the allowed set.
func (g *Guard) RequireRole(allowed ...storage.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := g.CurrentUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if user == nil || user.IsSuspended || !roleAllowed(user.Role, allowed) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequirePageUser gates page routes: unauthenticated callers are redirected
// to the login page, suspended accounts with a status flag the login page
// renders as a banner.
func (g *Guard) RequirePageUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := g.CurrentUser(c)
		if err != nil || user == nil {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		if user.IsSuspended {
			c.Redirect(http.StatusFound, "/auth/login?status=suspended")
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func (g *Guard) RequirePageRole(allowed ...storage.UserRole) gin.HandlerFunc {
	requireUser := g.RequirePageUser()
	return func(c *gin.Context) {
		requireUser(c)
		if c.IsAborted() {
			return
		}
		user, _ := UserFromContext(c)
		if user == nil || !roleAllowed(user.Role, allowed) {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func UserFromContext(c *gin.Context) (*storage.User, bool) {
	val, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*storage.User)
	return user, ok
}

func roleAllowed(role storage.UserRole, allowed []storage.UserRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
