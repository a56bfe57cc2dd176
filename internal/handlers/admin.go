package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/XaidenLabs/myreliq/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"log/slog"
)

type AdminStore interface {
	ListProfilesWithUsers(ctx context.Context) ([]storage.AdminUserRow, error)
	GetAdminStats(ctx context.Context) (*storage.AdminStats, error)
	SetUserSuspended(ctx context.Context, id uuid.UUID, suspended bool) (*storage.User, error)
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) error
}

type AdminHandler struct {
	Store  AdminStore
	Logger *slog.Logger
}

type adminUserUpdateRequest struct {
	UserID      *uuid.UUID `json:"userId"`
	Action      string     `json:"action"`
	IsSuspended bool       `json:"isSuspended"`
}

func NewAdminHandler(store AdminStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{Store: store, Logger: logger}
}

func (h *AdminHandler) RegisterRoutes(r gin.IRouter, requireAdmin gin.HandlerFunc) {
	admin := r.Group("/api/admin", requireAdmin)
	admin.GET("/users", h.ListUsers)
	admin.PUT("/users", h.UpdateUser)
	admin.GET("/stats", h.Stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	rows, err := h.Store.ListProfilesWithUsers(c.Request.Context())
	if err != nil {
		h.Logger.Error("admin user list failed", "error", err)
		sendError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	sendData(c, http.StatusOK, rows)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req adminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.UserID == nil {
		sendError(c, http.StatusBadRequest, "User ID is required")
		return
	}
	if req.Action != "toggle_suspension" {
		sendError(c, http.StatusBadRequest, "Invalid action")
		return
	}

	user, err := h.Store.SetUserSuspended(c.Request.Context(), *req.UserID, req.IsSuspended)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("suspension update failed", "error", err)
		sendError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// Suspension takes effect immediately for refresh: live sessions are
	// revoked so only the access token's remaining lifetime is exposed.
	if req.IsSuspended {
		if err := h.Store.RevokeAllSessions(c.Request.Context(), user.ID); err != nil {
			h.Logger.Error("session revocation failed", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "User status updated", "user": summarize(user)})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.Store.GetAdminStats(c.Request.Context())
	if err != nil {
		h.Logger.Error("admin stats failed", "error", err)
		sendError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	sendData(c, http.StatusOK, stats)
}
