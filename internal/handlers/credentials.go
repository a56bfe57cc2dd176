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

type credentialRequest struct {
	ID *uuid.UUID `json:"id"`
	storage.CredentialInput
}

func (h *PortfolioHandler) ListCredentials(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	credentials, err := h.Store.ListCredentials(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "credential list failed", err)
		return
	}
	sendData(c, http.StatusOK, credentials)
}

func (h *PortfolioHandler) CreateCredential(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Title == "" || req.MetadataURI == "" {
		sendError(c, http.StatusBadRequest, "Title and metadataUri required")
		return
	}
	if req.Status != "" && !validCredentialStatus(req.Status) {
		sendError(c, http.StatusBadRequest, "Invalid status")
		return
	}

	credential, err := h.Store.CreateCredential(c.Request.Context(), user.ID, req.CredentialInput)
	if err != nil {
		h.internalError(c, "credential insert failed", err)
		return
	}
	sendData(c, http.StatusCreated, credential)
}

func (h *PortfolioHandler) UpdateCredential(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.ID == nil {
		sendError(c, http.StatusBadRequest, "Credential ID required")
		return
	}
	if !validCredentialStatus(req.Status) {
		sendError(c, http.StatusBadRequest, "Invalid status")
		return
	}

	credential, err := h.Store.UpdateCredential(c.Request.Context(), user.ID, *req.ID, req.CredentialInput)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sendError(c, http.StatusNotFound, "Credential not found")
			return
		}
		h.internalError(c, "credential update failed", err)
		return
	}
	sendData(c, http.StatusOK, credential)
}

func (h *PortfolioHandler) DeleteCredential(c *gin.Context) {
	user, _ := guard.UserFromContext(c)

	id, ok := parseIDQuery(c)
	if !ok {
		sendError(c, http.StatusBadRequest, "Credential ID required")
		return
	}

	deleted, err := h.Store.DeleteCredential(c.Request.Context(), user.ID, id)
	if err != nil {
		h.internalError(c, "credential delete failed", err)
		return
	}
	if !deleted {
		sendError(c, http.StatusNotFound, "Credential not found")
		return
	}
	sendData(c, http.StatusOK, gin.H{"message": "Credential deleted successfully"})
}

func validCredentialStatus(status storage.CredentialStatus) bool {
	switch status {
	case storage.CredentialIssued, storage.CredentialRevoked, storage.CredentialPending:
		return true
	}
	return false
}
