package handlers

import (
	"errors"
	"net/http"

	"github.com/XaidenLabs/myreliq/internal/guard"
	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type roleRequest struct {
	ID *uuid.UUID `json:"id"`
	storage.RoleInput
}

func (h *PortfolioHandler) ListRoles(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var identityID *uuid.UUID
	if raw := c.Query("identityId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid identityId")
			return
		}
		identityID = &id
	}

	roles, err := h.Store.ListRoles(c.Request.Context(), user.ID, identityID)
	if err != nil {
		h.internalError(c, "role list failed", err)
		return
	}
	sendData(c, http.StatusOK, roles)
}

func (h *PortfolioHandler) CreateRole(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Title == "" || req.Organization == "" || req.IdentityID == uuid.Nil {
		sendError(c, http.StatusBadRequest, "Title, organization and identityId required")
		return
	}
	if !validWorkMode(req.WorkMode) {
		sendError(c, http.StatusBadRequest, "Invalid work mode")
		return
	}

	role, err := h.Store.CreateRole(c.Request.Context(), user.ID, req.RoleInput)
	if err != nil {
		h.internalError(c, "role insert failed", err)
		return
	}
	sendData(c, http.StatusCreated, role)
}

func (h *PortfolioHandler) UpdateRole(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.ID == nil {
		sendError(c, http.StatusBadRequest, "Role ID required")
		return
	}
	if !validWorkMode(req.WorkMode) {
		sendError(c, http.StatusBadRequest, "Invalid work mode")
		return
	}

	role, err := h.Store.UpdateRole(c.Request.Context(), user.ID, *req.ID, req.RoleInput)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "Role not found")
			return
		}
		h.internalError(c, "role update failed", err)
		return
	}
	sendData(c, http.StatusOK, role)
}

func (h *PortfolioHandler) DeleteRole(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	id, ok := parseIDQuery(c)
	if !ok {
		sendError(c, http.StatusBadRequest, "Role ID required")
		return
	}

	deleted, err := h.Store.DeleteRole(c.Request.Context(), user.ID, id)
	if err != nil {
		h.internalError(c, "role delete failed", err)
		return
	}
	if !deleted {
		sendError(c, http.StatusNotFound, "Role not found")
		return
	}
	sendData(c, http.StatusOK, gin.H{"message": "Role deleted successfully"})
}

func validWorkMode(mode storage.WorkMode) bool {
	switch mode {
	case storage.WorkModeRemote, storage.WorkModeOnSite, storage.WorkModeHybrid:
		return true
	}
	return false
}
