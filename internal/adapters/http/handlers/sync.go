package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// NextRunner reports when scheduled cycles fire next.
type NextRunner interface {
	NextRuns() map[domain.CycleKind]time.Time
}

// SyncHandler exposes the sync loop: manual cycles, status and conflicts.
type SyncHandler struct {
	sync      *app.SyncService
	scheduler NextRunner
}

// NewSyncHandler creates a sync handler. scheduler may be nil.
func NewSyncHandler(sync *app.SyncService, scheduler NextRunner) *SyncHandler {
	return &SyncHandler{sync: sync, scheduler: scheduler}
}

// TriggerSync handles POST /api/v1/sync
// Runs a full sync now. A cycle that ran but failed is still a 200; the
// status carries the reason.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	status, _, err := h.sync.FullSync(detached(c))
	if errors.Is(err, app.ErrCycleInFlight) {
		dto.HandleError(c, dto.ErrSyncInProgress)
		return
	}

	c.JSON(http.StatusOK, h.statusResponse(status))
}

// TriggerPoll handles POST /api/v1/sync/poll
func (h *SyncHandler) TriggerPoll(c *gin.Context) {
	status, err := h.sync.Poll(detached(c))
	if errors.Is(err, app.ErrCycleInFlight) {
		dto.HandleError(c, dto.ErrSyncInProgress)
		return
	}

	c.JSON(http.StatusOK, h.statusResponse(status))
}

// Status handles GET /api/v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusResponse(h.sync.Status()))
}

// Conflicts handles GET /api/v1/sync/conflicts
func (h *SyncHandler) Conflicts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ConflictsResponse{Conflicts: h.sync.Conflicts()})
}

// RestoreLocal handles POST /api/v1/sync/conflicts/:id/restore
// Pushes the local version of a conflicted quote back upstream.
func (h *SyncHandler) RestoreLocal(c *gin.Context) {
	result, err := h.sync.RestoreLocal(detached(c), c.Param("id"))
	h.respondRestore(c, result, err)
}

// RestoreAllLocal handles POST /api/v1/sync/conflicts/restore
func (h *SyncHandler) RestoreAllLocal(c *gin.Context) {
	result, err := h.sync.RestoreAllLocal(detached(c))
	h.respondRestore(c, result, err)
}

func (h *SyncHandler) respondRestore(c *gin.Context, result app.RestoreResult, err error) {
	if errors.Is(err, app.ErrCycleInFlight) {
		err = dto.ErrSyncInProgress
	}

	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RestoreResponse{
		Restored:  result.Restored,
		Failed:    result.Failed,
		Status:    result.Status,
		Conflicts: result.Conflicts,
	})
}

func (h *SyncHandler) statusResponse(status domain.SyncStatus) dto.SyncStatusResponse {
	resp := dto.SyncStatusResponse{SyncStatus: status}
	if h.scheduler == nil {
		return resp
	}

	next := h.scheduler.NextRuns()
	if t, ok := next[domain.CyclePoll]; ok {
		resp.NextPoll = &t
	}

	if t, ok := next[domain.CycleSync]; ok {
		resp.NextSync = &t
	}

	return resp
}

// detached keeps request-scoped values but not the request's cancellation:
// a client that disconnects must not abort a cycle halfway through its merge.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// RegisterSyncRoutes registers sync routes on the given router group.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	sync.POST("", h.TriggerSync)
	sync.POST("/poll", h.TriggerPoll)
	sync.GET("/status", h.Status)
	sync.GET("/conflicts", h.Conflicts)
	sync.POST("/conflicts/restore", h.RestoreAllLocal)
	sync.POST("/conflicts/:id/restore", h.RestoreLocal)
}
