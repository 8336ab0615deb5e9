package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/interfaces/http/dto"
)

// DirectoryHandler exposes the linked account and connection surface
type DirectoryHandler struct {
	BaseHandler
	linkedAccounts unified.LinkedAccountRepository
	connections    unified.ConnectionRepository
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(linkedAccounts unified.LinkedAccountRepository, connections unified.ConnectionRepository) *DirectoryHandler {
	return &DirectoryHandler{
		linkedAccounts: linkedAccounts,
		connections:    connections,
	}
}

// RegisterRoutes registers the directory routes
func (h *DirectoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/linked-accounts/:id/connections", h.ListConnections)
	rg.GET("/connections/:id", h.GetConnection)
}

// ConnectionResponse represents one provider connection
type ConnectionResponse struct {
	ID                   string     `json:"id"`
	LinkedAccountID      string     `json:"linked_account_id"`
	ProviderSlug         string     `json:"provider_slug"`
	Vertical             string     `json:"vertical"`
	Status               string     `json:"status"`
	LastSuccessfulSyncAt *time.Time `json:"last_successful_sync_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func toConnectionResponse(conn unified.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:                   conn.ID.String(),
		LinkedAccountID:      conn.LinkedAccountID.String(),
		ProviderSlug:         conn.ProviderSlug,
		Vertical:             conn.Vertical.String(),
		Status:               conn.Status.String(),
		LastSuccessfulSyncAt: conn.LastSuccessfulSyncAt,
		CreatedAt:            conn.CreatedAt,
	}
}

// ListConnections returns all connections of one linked account
func (h *DirectoryHandler) ListConnections(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}
	accountID := uuid.MustParse(req.ID)

	if _, err := h.linkedAccounts.FindByID(c.Request.Context(), accountID); err != nil {
		if errors.Is(err, unified.ErrLinkedAccountNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
		return
	}

	conns, err := h.connections.FindByLinkedAccount(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
		return
	}

	out := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		out = append(out, toConnectionResponse(conn))
	}
	h.List(c, out, len(out))
}

// GetConnection returns one connection by id
func (h *DirectoryHandler) GetConnection(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	conn, err := h.connections.FindByID(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		if errors.Is(err, unified.ErrConnectionNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
		return
	}

	h.Success(c, toConnectionResponse(*conn))
}
