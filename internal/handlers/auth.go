package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/XaidenLabs/myreliq/internal/config"
	"github.com/XaidenLabs/myreliq/internal/cookies"
	"github.com/XaidenLabs/myreliq/internal/guard"
	"github.com/XaidenLabs/myreliq/internal/metrics"
	"github.com/XaidenLabs/myreliq/internal/rate"
	"github.com/XaidenLabs/myreliq/internal/security"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"log/slog"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*storage.User, error)
	CreateUser(ctx context.Context, email, passwordHash string, firstName, lastName *string) (*storage.User, error)
	CreateSession(ctx context.Context, userID uuid.UUID, tokenHash string, userAgent, ipAddress *string, expiresAt time.Time) (*storage.Session, error)
	RotateSession(ctx context.Context, oldHash, newHash string, userAgent, ipAddress *string, expiresAt time.Time) (*storage.Session, error)
	RevokeSessionByHash(ctx context.Context, tokenHash string) error
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
}

type AuthHandler struct {
	Store       AuthStore
	Guard       *guard.Guard
	Logger      *slog.Logger
	Secret      []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Argon2      security.Argon2Params
	RateLimiter rate.Limiter
	TokenGen    security.TokenGenerator
	Clock       Clock
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type userSummary struct {
	ID            string           `json:"id"`
	Email         string           `json:"email"`
	FirstName     *string          `json:"firstName,omitempty"`
	LastName      *string          `json:"lastName,omitempty"`
	Role          storage.UserRole `json:"role"`
	EmailVerified bool             `json:"emailVerified"`
	IsSuspended   bool             `json:"isSuspended"`
	CreatedAt     string           `json:"createdAt"`
	UpdatedAt     string           `json:"updatedAt"`
}

func NewAuthHandler(store AuthStore, g *guard.Guard, logger *slog.Logger, cfg *config.Config, limiter rate.Limiter) *AuthHandler {
	return &AuthHandler{
		Store:      store,
		Guard:      g,
		Logger:     logger,
		Secret:     []byte(cfg.AccessSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Argon2: security.Argon2Params{
			Memory:      cfg.Argon2.Memory,
			Iterations:  cfg.Argon2.Iterations,
			Parallelism: cfg.Argon2.Parallelism,
			SaltLength:  cfg.Argon2.SaltLength,
			KeyLength:   cfg.Argon2.KeyLength,
		},
		RateLimiter: limiter,
		TokenGen:    security.DefaultTokenGenerator{},
		Clock:       systemClock{},
	}
}

func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/refresh", h.Refresh)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/auth/me", h.Me)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		return
	}

	ip := c.ClientIP()
	now := h.Clock.Now()
	allowed, retryAfter, err := h.RateLimiter.Allow(c.Request.Context(), ip, now)
	if err != nil {
		h.Logger.Error("rate limiter failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if !allowed {
		metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.Store.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.Logger.Error("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	// Suspended accounts and bad passwords get the same generic reply so
	// the response cannot be used to probe which accounts exist.
	if user.IsSuspended {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := h.issueSession(c, user, now); err != nil {
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"data":       gin.H{"id": user.ID.String(), "email": user.Email, "role": user.Role},
		"redirectTo": redirectForRole(user.Role),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash, err := security.HashPassword(req.Password, h.Argon2)
	if err != nil {
		h.Logger.Error("password hash failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), email, hash, req.FirstName, req.LastName)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		h.Logger.Error("user insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if err := h.issueSession(c, user, h.Clock.Now()); err != nil {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":       gin.H{"id": user.ID.String(), "email": user.Email, "role": user.Role},
		"redirectTo": "/dashboard",
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := cookies.RefreshToken(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
		return
	}

	oldHash := security.HashToken(raw)

	newToken, newHash, err := h.TokenGen.New()
	if err != nil {
		h.Logger.Error("refresh token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	now := h.Clock.Now()
	sess, err := h.Store.RotateSession(
		c.Request.Context(),
		oldHash,
		newHash,
		optional(c.Request.UserAgent()),
		optional(c.ClientIP()),
		now.Add(h.RefreshTTL),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown, replayed, revoked, or expired token: the session is
			// dead and the client must re-authenticate.
			metrics.SessionRotations.WithLabelValues("invalid").Inc()
			cookies.ClearAuthCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		h.Logger.Error("session rotation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	user, err := h.Store.GetUserByID(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			cookies.ClearAuthCookies(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		h.Logger.Error("refresh user lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	access, err := security.NewAccessToken(user.ID.String(), string(user.Role), h.Secret, h.AccessTTL, now)
	if err != nil {
		h.Logger.Error("jwt sign failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	metrics.SessionRotations.WithLabelValues("success").Inc()
	cookies.SetAuthCookies(c, access, newToken, h.AccessTTL, h.RefreshTTL)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"id": user.ID.String(), "email": user.Email, "role": user.Role},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if raw := cookies.RefreshToken(c); raw != "" {
		if err := h.Store.RevokeSessionByHash(c.Request.Context(), security.HashToken(raw)); err != nil {
			h.Logger.Error("revoke session failed", "error", err)
		}
	}

	cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Guard.CurrentUser(c)
	if err != nil {
		h.Logger.Error("me lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summarize(user)})
}

func (h *AuthHandler) issueSession(c *gin.Context, user *storage.User, now time.Time) error {
	refreshToken, refreshHash, err := h.TokenGen.New()
	if err != nil {
		h.Logger.Error("refresh token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return err
	}

	_, err = h.Store.CreateSession(
		c.Request.Context(),
		user.ID,
		refreshHash,
		optional(c.Request.UserAgent()),
		optional(c.ClientIP()),
		now.Add(h.RefreshTTL),
	)
	if err != nil {
		h.Logger.Error("session insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return err
	}

	access, err := security.NewAccessToken(user.ID.String(), string(user.Role), h.Secret, h.AccessTTL, now)
	if err != nil {
		h.Logger.Error("jwt sign failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return err
	}

	cookies.SetAuthCookies(c, access, refreshToken, h.AccessTTL, h.RefreshTTL)
	return nil
}

func redirectForRole(role storage.UserRole) string {
	if role == storage.RoleAdmin || role == storage.RoleSuperadmin {
		return "/admin"
	}
	return "/dashboard"
}

func summarize(user *storage.User) userSummary {
	return userSummary{
		ID:            user.ID.String(),
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		IsSuspended:   user.IsSuspended,
		CreatedAt:     user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func optional(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
