package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/XaidenLabs/myreliq/internal/guard"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type portfolioView struct {
	Profile     *storage.Profile     `json:"profile"`
	Identities  []storage.Identity   `json:"identities"`
	Roles       []storage.Role       `json:"roles"`
	Milestones  []storage.Milestone  `json:"milestones"`
	Credentials []storage.Credential `json:"credentials"`
}

type publishVersionRequest struct {
	SolanaTx *string `json:"solanaTx"`
	IsPublic bool    `json:"isPublic"`
}

func (h *PortfolioHandler) PublicPortfolio(c *gin.Context) {
	view, _, ok := h.loadPortfolio(c, c.Param("slug"))
	if !ok {
		return
	}
	sendData(c, http.StatusOK, view)
}

// PublicIdentityPortfolio narrows the portfolio to one persona: only that
// identity's roles and their milestones are included.
func (h *PortfolioHandler) PublicIdentityPortfolio(c *gin.Context) {
	view, userID, ok := h.loadPortfolio(c, c.Param("slug"))
	if !ok {
		return
	}

	identity, err := h.Store.GetIdentityBySlug(c.Request.Context(), userID, c.Param("identitySlug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "Identity not found")
			return
		}
		h.internalError(c, "identity lookup failed", err)
		return
	}

	roles := view.Roles[:0]
	roleIDs := map[uuid.UUID]bool{}
	for _, role := range view.Roles {
		if role.IdentityID == identity.ID {
			roles = append(roles, role)
			roleIDs[role.ID] = true
		}
	}
	milestones := []storage.Milestone{}
	for _, m := range view.Milestones {
		if roleIDs[m.RoleID] {
			milestones = append(milestones, m)
		}
	}

	view.Identities = []storage.Identity{*identity}
	view.Roles = roles
	view.Milestones = milestones
	sendData(c, http.StatusOK, view)
}

func (h *PortfolioHandler) ListVersions(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	versions, err := h.Store.ListPortfolioVersions(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "version list failed", err)
		return
	}
	sendData(c, http.StatusOK, versions)
}

// PublishVersion snapshots the caller's public portfolio, hashes the JSON
// and records the next version number. The hash is what gets anchored
// on-chain; the snapshot itself is reproducible from the live data.
func (h *PortfolioHandler) PublishVersion(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req publishVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	profile, err := h.Store.GetProfileByUserID(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusBadRequest, "Profile required before publishing")
			return
		}
		h.internalError(c, "profile lookup failed", err)
		return
	}

	view, ok := h.assemblePortfolio(c, profile)
	if !ok {
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		h.internalError(c, "snapshot marshal failed", err)
		return
	}
	sum := sha256.Sum256(payload)

	version, err := h.Store.CreatePortfolioVersion(c.Request.Context(), user.ID, hex.EncodeToString(sum[:]), req.SolanaTx, req.IsPublic)
	if err != nil {
		h.internalError(c, "version insert failed", err)
		return
	}
	sendData(c, http.StatusCreated, version)
}

func (h *PortfolioHandler) loadPortfolio(c *gin.Context, slug string) (*portfolioView, uuid.UUID, bool) {
	profile, err := h.Store.GetProfileBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "Profile not found")
			return nil, uuid.Nil, false
		}
		h.internalError(c, "profile lookup failed", err)
		return nil, uuid.Nil, false
	}

	view, ok := h.assemblePortfolio(c, profile)
	if !ok {
		return nil, uuid.Nil, false
	}
	return view, profile.UserID, true
}

func (h *PortfolioHandler) assemblePortfolio(c *gin.Context, profile *storage.Profile) (*portfolioView, bool) {
	ctx := c.Request.Context()

	identities, err := h.Store.ListIdentities(ctx, profile.UserID)
	if err != nil {
		h.internalError(c, "identity list failed", err)
		return nil, false
	}
	roles, err := h.Store.ListPublicRolesByUser(ctx, profile.UserID)
	if err != nil {
		h.internalError(c, "role list failed", err)
		return nil, false
	}
	milestones, err := h.Store.ListMilestones(ctx, profile.UserID, nil)
	if err != nil {
		h.internalError(c, "milestone list failed", err)
		return nil, false
	}
	credentials, err := h.Store.ListCredentials(ctx, profile.UserID)
	if err != nil {
		h.internalError(c, "credential list failed", err)
		return nil, false
	}

	return &portfolioView{
		Profile:     profile,
		Identities:  identities,
		Roles:       roles,
		Milestones:  milestones,
		Credentials: credentials,
	}, true
}
