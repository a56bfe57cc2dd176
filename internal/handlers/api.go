package handlers

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"log/slog"
)

type PortfolioStore interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*storage.Profile, error)
	GetProfileBySlug(ctx context.Context, slug string) (*storage.Profile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, upd storage.ProfileUpdate) (*storage.Profile, error)

	ListIdentities(ctx context.Context, userID uuid.UUID) ([]storage.Identity, error)
	GetIdentityBySlug(ctx context.Context, userID uuid.UUID, slug string) (*storage.Identity, error)
	CreateIdentity(ctx context.Context, userID uuid.UUID, in storage.IdentityInput) (*storage.Identity, error)
	UpdateIdentity(ctx context.Context, userID, id uuid.UUID, in storage.IdentityInput, mintAddress, metadataURI *string) (*storage.Identity, error)
	DeleteIdentity(ctx context.Context, userID, id uuid.UUID) (bool, error)

	ListRoles(ctx context.Context, userID uuid.UUID, identityID *uuid.UUID) ([]storage.Role, error)
	ListPublicRolesByUser(ctx context.Context, userID uuid.UUID) ([]storage.Role, error)
	CreateRole(ctx context.Context, userID uuid.UUID, in storage.RoleInput) (*storage.Role, error)
	UpdateRole(ctx context.Context, userID, id uuid.UUID, in storage.RoleInput) (*storage.Role, error)
	DeleteRole(ctx context.Context, userID, id uuid.UUID) (bool, error)

	ListMilestones(ctx context.Context, userID uuid.UUID, roleID *uuid.UUID) ([]storage.Milestone, error)
	CreateMilestone(ctx context.Context, userID uuid.UUID, in storage.MilestoneInput) (*storage.Milestone, error)
	UpdateMilestone(ctx context.Context, userID, id uuid.UUID, in storage.MilestoneInput) (*storage.Milestone, error)
	DeleteMilestone(ctx context.Context, userID, id uuid.UUID) (bool, error)

	ListCredentials(ctx context.Context, userID uuid.UUID) ([]storage.Credential, error)
	CreateCredential(ctx context.Context, userID uuid.UUID, in storage.CredentialInput) (*storage.Credential, error)
	UpdateCredential(ctx context.Context, userID, id uuid.UUID, in storage.CredentialInput) (*storage.Credential, error)
	DeleteCredential(ctx context.Context, userID, id uuid.UUID) (bool, error)

	CreatePortfolioVersion(ctx context.Context, userID uuid.UUID, jsonHash string, solanaTx *string, isPublic bool) (*storage.PortfolioVersion, error)
	ListPortfolioVersions(ctx context.Context, userID uuid.UUID) ([]storage.PortfolioVersion, error)
}

// PortfolioHandler serves the authenticated dashboard CRUD and the public
// portfolio pages.
type PortfolioHandler struct {
	Store  PortfolioStore
	Logger *slog.Logger
	Clock  Clock
}

func NewPortfolioHandler(store PortfolioStore, logger *slog.Logger) *PortfolioHandler {
	return &PortfolioHandler{Store: store, Logger: logger, Clock: systemClock{}}
}

func (h *PortfolioHandler) RegisterRoutes(r gin.IRouter, requireUser gin.HandlerFunc) {
	api := r.Group("/api", requireUser)
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.UpdateProfile)

	api.GET("/identities", h.ListIdentities)
	api.POST("/identities", h.CreateIdentity)
	api.PUT("/identities", h.UpdateIdentity)
	api.DELETE("/identities", h.DeleteIdentity)

	api.GET("/roles", h.ListRoles)
	api.POST("/roles", h.CreateRole)
	api.PUT("/roles", h.UpdateRole)
	api.DELETE("/roles", h.DeleteRole)

	api.GET("/milestones", h.ListMilestones)
	api.POST("/milestones", h.CreateMilestone)
	api.PUT("/milestones", h.UpdateMilestone)
	api.DELETE("/milestones", h.DeleteMilestone)

	api.GET("/credentials", h.ListCredentials)
	api.POST("/credentials", h.CreateCredential)
	api.PUT("/credentials", h.UpdateCredential)
	api.DELETE("/credentials", h.DeleteCredential)

	api.GET("/portfolio/versions", h.ListVersions)
	api.POST("/portfolio/versions", h.PublishVersion)

	// Public portfolio pages carry no auth.
	r.GET("/api/portfolio/:slug", h.PublicPortfolio)
	r.GET("/api/portfolio/:slug/:identitySlug", h.PublicIdentityPortfolio)
}

func sendData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func sendError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func (h *PortfolioHandler) internalError(c *gin.Context, op string, err error) {
	h.Logger.Error(op, "error", err)
	sendError(c, http.StatusInternalServerError, "Internal Server Error")
}

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = slugAlphabet[rand.IntN(len(slugAlphabet))]
	}
	return string(b)
}

func parseIDQuery(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("id")
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
