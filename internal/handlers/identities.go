package handlers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/XaidenLabs/myreliq/internal/guard"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type identityRequest struct {
	ID           *uuid.UUID `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  *string    `json:"description"`
	ProfileImage *string    `json:"profileImage"`
	IsPrimary    bool       `json:"isPrimary"`
	MintAddress  *string    `json:"mintAddress"`
	MetadataURI  *string    `json:"metadataUri"`
}

func (h *PortfolioHandler) ListIdentities(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	identities, err := h.Store.ListIdentities(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "identity list failed", err)
		return
	}
	sendData(c, http.StatusOK, identities)
}

func (h *PortfolioHandler) CreateIdentity(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		sendError(c, http.StatusBadRequest, "Identity name is required")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	in := storage.IdentityInput{
		Name:         req.Name,
		Slug:         slug,
		Description:  req.Description,
		ProfileImage: req.ProfileImage,
		IsPrimary:    req.IsPrimary,
	}

	identity, err := h.Store.CreateIdentity(c.Request.Context(), user.ID, in)
	if errors.Is(err, storage.ErrDuplicateSlug) {
		// One retry with a numeric suffix before giving up.
		in.Slug = fmt.Sprintf("%s-%d", slug, rand.IntN(1000))
		identity, err = h.Store.CreateIdentity(c.Request.Context(), user.ID, in)
	}
	if err != nil {
		h.internalError(c, "identity insert failed", err)
		return
	}
	sendData(c, http.StatusCreated, identity)
}

func (h *PortfolioHandler) UpdateIdentity(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.ID == nil {
		sendError(c, http.StatusBadRequest, "Identity ID required")
		return
	}

	in := storage.IdentityInput{
		Name:         req.Name,
		Description:  req.Description,
		ProfileImage: req.ProfileImage,
		IsPrimary:    req.IsPrimary,
	}

	identity, err := h.Store.UpdateIdentity(c.Request.Context(), user.ID, *req.ID, in, req.MintAddress, req.MetadataURI)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "Identity not found")
			return
		}
		h.internalError(c, "identity update failed", err)
		return
	}
	sendData(c, http.StatusOK, identity)
}

func (h *PortfolioHandler) DeleteIdentity(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	id, ok := parseIDQuery(c)
	if !ok {
		sendError(c, http.StatusBadRequest, "Identity ID required")
		return
	}

	deleted, err := h.Store.DeleteIdentity(c.Request.Context(), user.ID, id)
	if err != nil {
		h.internalError(c, "identity delete failed", err)
		return
	}
	if !deleted {
		sendError(c, http.StatusNotFound, "Identity not found")
		return
	}
	sendData(c, http.StatusOK, gin.H{"message": "Identity deleted successfully"})
}
