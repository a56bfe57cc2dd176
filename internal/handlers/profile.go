package handlers

import (
	"errors"
	"net/http"

	"github.com/XaidenLabs/myreliq/internal/guard"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

func (h *PortfolioHandler) GetProfile(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	profile, err := h.Store.GetProfileByUserID(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No profile yet is not an error; the dashboard shows onboarding.
			sendData(c, http.StatusOK, nil)
			return
		}
		h.internalError(c, "profile lookup failed", err)
		return
	}
	sendData(c, http.StatusOK, profile)
}

func (h *PortfolioHandler) UpdateProfile(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var upd storage.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if upd.FullName == "" {
		sendError(c, http.StatusBadRequest, "Full name is required")
		return
	}

	// First save mints a share slug from the name so the portfolio is
	// immediately linkable; a random suffix keeps slugs globally unique.
	if upd.ShareSlug == nil {
		existing, err := h.Store.GetProfileByUserID(c.Request.Context(), user.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			h.internalError(c, "profile lookup failed", err)
			return
		}
		if existing == nil || existing.ShareSlug == nil {
			slug := slugify(upd.FullName) + "-" + randomSuffix(5)
			upd.ShareSlug = &slug
		}
	}

	profile, err := h.Store.UpsertProfile(c.Request.Context(), user.ID, upd)
	if err != nil {
		h.internalError(c, "profile upsert failed", err)
		return
	}
	sendData(c, http.StatusOK, profile)
}
