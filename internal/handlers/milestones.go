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

type milestoneRequest struct {
	ID *uuid.UUID `json:"id"`
	storage.MilestoneInput
}

func (h *PortfolioHandler) ListMilestones(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var roleID *uuid.UUID
	if raw := c.Query("roleId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid roleId")
			return
		}
		roleID = &id
	}

	milestones, err := h.Store.ListMilestones(c.Request.Context(), user.ID, roleID)
	if err != nil {
		h.internalError(c, "milestone list failed", err)
		return
	}
	sendData(c, http.StatusOK, milestones)
}

func (h *PortfolioHandler) CreateMilestone(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Title == "" || req.Description == "" || req.RoleID == uuid.Nil {
		sendError(c, http.StatusBadRequest, "Title, description and roleId required")
		return
	}

	milestone, err := h.Store.CreateMilestone(c.Request.Context(), user.ID, req.MilestoneInput)
	if err != nil {
		h.internalError(c, "milestone insert failed", err)
		return
	}
	sendData(c, http.StatusCreated, milestone)
}

func (h *PortfolioHandler) UpdateMilestone(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.ID == nil {
		sendError(c, http.StatusBadRequest, "Milestone ID required")
		return
	}

	milestone, err := h.Store.UpdateMilestone(c.Request.Context(), user.ID, *req.ID, req.MilestoneInput)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "Milestone not found")
			return
		}
		h.internalError(c, "milestone update failed", err)
		return
	}
	sendData(c, http.StatusOK, milestone)
}

func (h *PortfolioHandler) DeleteMilestone(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	id, ok := parseIDQuery(c)
	if !ok {
		sendError(c, http.StatusBadRequest, "Milestone ID required")
		return
	}

	deleted, err := h.Store.DeleteMilestone(c.Request.Context(), user.ID, id)
	if err != nil {
		h.internalError(c, "milestone delete failed", err)
		return
	}
	if !deleted {
		sendError(c, http.StatusNotFound, "Milestone not found")
		return
	}
	sendData(c, http.StatusOK, gin.H{"message": "Milestone deleted successfully"})
}
