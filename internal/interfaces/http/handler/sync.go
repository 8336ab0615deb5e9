package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appsync "github.com/unifyd/backend/internal/application/sync"
	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/scheduler"
	"github.com/unifyd/backend/internal/interfaces/http/dto"
)

// JobRunner triggers and inspects background sync jobs
type JobRunner interface {
	TriggerNow(ctx context.Context, name string) error
	History() []scheduler.Run
}

// TenantSyncer runs one sync target for a single tenant
type TenantSyncer interface {
	SyncTenant(ctx context.Context, tenantID uuid.UUID, target appsync.Target) (appsync.RunSummary, error)
}

// SyncHandler exposes the sync job surface
type SyncHandler struct {
	BaseHandler
	jobs    JobRunner
	tenants unified.TenantRepository
	syncer  TenantSyncer
	targets []appsync.Target
}

// NewSyncHandler creates a new SyncHandler. targets is the set of sync targets
// run for a tenant-level trigger.
func NewSyncHandler(jobs JobRunner, tenants unified.TenantRepository, syncer TenantSyncer, targets []appsync.Target) *SyncHandler {
	return &SyncHandler{jobs: jobs, tenants: tenants, syncer: syncer, targets: targets}
}

// RegisterRoutes registers the sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/jobs/:name/trigger", h.TriggerJob)
		sync.POST("/tenants/:id/trigger", h.TriggerTenant)
		sync.GET("/runs", h.ListRuns)
	}
}

// TriggerJobResponse represents the trigger acknowledgement
type TriggerJobResponse struct {
	Job       string `json:"job"`
	Triggered bool   `json:"triggered"`
}

// TriggerJob runs one registered sync job immediately
func (h *SyncHandler) TriggerJob(c *gin.Context) {
	name := c.Param("name")

	err := h.jobs.TriggerNow(c.Request.Context(), name)
	switch {
	case err == nil:
		h.Accepted(c, TriggerJobResponse{Job: name, Triggered: true})
	case errors.Is(err, scheduler.ErrJobNotFound):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, scheduler.ErrJobAlreadyRunning):
		h.Error(c, http.StatusConflict, dto.ErrCodeJobRunning, err.Error())
	default:
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
	}
}

// TenantSyncResponse aggregates the outcome of a tenant-level sync
type TenantSyncResponse struct {
	TenantID    string `json:"tenant_id"`
	Connections int    `json:"connections"`
	Succeeded   int    `json:"succeeded"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Records     int    `json:"records"`
}

// TriggerTenant runs every sync target for one tenant and waits for the
// result. Used for onboarding, where the first sync should not wait for the
// next scheduled run.
func (h *SyncHandler) TriggerTenant(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}
	tenantID := uuid.MustParse(req.ID)

	ctx := c.Request.Context()
	tenant, err := h.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, unified.ErrTenantNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, err.Error())
			return
		}
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
		return
	}

	resp := TenantSyncResponse{TenantID: tenant.ID.String()}
	for _, target := range h.targets {
		summary, err := h.syncer.SyncTenant(ctx, tenant.ID, target)
		resp.Connections += summary.Connections
		resp.Succeeded += summary.Succeeded
		resp.Skipped += summary.Skipped
		resp.Failed += summary.Failed
		resp.Records += summary.Records
		if err != nil {
			h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, err.Error())
			return
		}
	}

	h.Success(c, resp)
}

// RunResponse represents one sync job run
type RunResponse struct {
	ID          string     `json:"id"`
	Job         string     `json:"job"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ListRuns returns the recent sync runs, newest first
func (h *SyncHandler) ListRuns(c *gin.Context) {
	history := h.jobs.History()

	runs := make([]RunResponse, 0, len(history))
	for _, run := range history {
		runs = append(runs, RunResponse{
			ID:          run.ID.String(),
			Job:         run.JobName,
			Status:      string(run.Status),
			Error:       run.Error,
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
		})
	}

	h.List(c, runs, len(runs))
}
