package handler

import (
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/logger"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/scheduler"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// PoolReporter exposes connection pool statistics
type PoolReporter interface {
	Stats() (persistence.ConnectionStats, error)
}

// JobScheduler queues background reconcile runs
type JobScheduler interface {
	ScheduleSync(tenantID uuid.UUID, kind scheduler.SyncKind) error
	JobHistory(limit int) []*scheduler.ReconcileJob
}

// SystemHandler handles health, version and background job endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	db        Pinger
	jobs      JobScheduler
}

// SystemHandlerConfig wires a SystemHandler. DB and Jobs may be nil.
type SystemHandlerConfig struct {
	Name    string
	Version string
	DB      Pinger
	Jobs    JobScheduler
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(cfg SystemHandlerConfig) *SystemHandler {
	return &SystemHandler{
		name:      cfg.Name,
		version:   cfg.Version,
		startTime: time.Now(),
		db:        cfg.DB,
		jobs:      cfg.Jobs,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string      `json:"name"`
	Version   string      `json:"version"`
	GoVersion string      `json:"go_version"`
	Uptime    string      `json:"uptime"`
	DBPool    *DBPoolInfo `json:"db_pool,omitempty"`
}

// DBPoolInfo summarizes the database connection pool
type DBPoolInfo struct {
	Open         int    `json:"open"`
	InUse        int    `json:"in_use"`
	Idle         int    `json:"idle"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
}

// ReconcileJobResponse is the JSON view of a background reconcile job
type ReconcileJobResponse struct {
	ID            uuid.UUID           `json:"id"`
	TenantID      uuid.UUID           `json:"tenant_id"`
	Kind          scheduler.SyncKind  `json:"kind"`
	Status        scheduler.JobStatus `json:"status"`
	Error         string              `json:"error,omitempty"`
	StartedAt     *time.Time          `json:"started_at,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	RetryCount    int                 `json:"retry_count"`
	NextRetryAt   *time.Time          `json:"next_retry_at,omitempty"`
	Pages         int                 `json:"pages"`
	SuccessCount  int                 `json:"success_count"`
	FailedCount   int                 `json:"failed_count"`
	FailedItemIDs []string            `json:"failed_item_ids,omitempty"`
	Cursor        string              `json:"cursor,omitempty"`
}

// ScheduleResponse acknowledges a queued job
type ScheduleResponse struct {
	TenantID uuid.UUID          `json:"tenant_id"`
	Kind     scheduler.SyncKind `json:"kind"`
	Status   string             `json:"status"`
}

func toJobResponse(j *scheduler.ReconcileJob) ReconcileJobResponse {
	return ReconcileJobResponse{
		ID:            j.ID,
		TenantID:      j.TenantID,
		Kind:          j.Kind,
		Status:        j.Status,
		Error:         j.Error,
		StartedAt:     j.StartedAt,
		CompletedAt:   j.CompletedAt,
		RetryCount:    j.RetryCount,
		NextRetryAt:   j.NextRetryAt,
		Pages:         j.Pages,
		SuccessCount:  j.SuccessCount,
		FailedCount:   j.FailedCount,
		FailedItemIDs: j.FailedItemIDs,
		Cursor:        j.Cursor,
	}
}

// Health handles GET /health
// @ID           getHealth
// @Summary      Health check
// @Description  Reports database and Redis reachability
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().Format(time.RFC3339),
		Database: "ok",
	}
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			resp.Status, resp.Database = "unhealthy", "error"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetSystemInfo handles GET /system/info
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Version, uptime and database pool statistics
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if pool, ok := h.db.(PoolReporter); ok {
		if stats, err := pool.Stats(); err == nil {
			info.DBPool = &DBPoolInfo{
				Open:         stats.OpenConnections,
				InUse:        stats.InUse,
				Idle:         stats.Idle,
				WaitCount:    stats.WaitCount,
				WaitDuration: stats.WaitDuration.String(),
			}
		}
	}
	h.Success(c, info)
}

// Ping handles GET /system/ping
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Security     BearerAuth
// @Router       /api/v1/system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{Message: "pong", Timestamp: time.Now().Format(time.RFC3339)})
}

// ScheduleSync handles POST /integrations/sync/:kind. The run happens in the
// background; progress shows up in GET /system/jobs.
// @ID           scheduleSync
// @Summary      Schedule a background sync
// @Tags         integrations
// @Produce      json
// @Param        kind path string true "Sync kind" Enums(orders, invoices, payments)
// @Success      202 {object} APIResponse[ScheduleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/sync/{kind} [post]
func (h *SystemHandler) ScheduleSync(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeProviderNotConfigured, "Background sync is disabled")
		return
	}

	kind := scheduler.SyncKind(c.Param("kind"))
	switch kind {
	case scheduler.SyncKindOrders, scheduler.SyncKindInvoices, scheduler.SyncKindPayments:
	default:
		h.BadRequest(c, "kind must be one of orders, invoices, payments")
		return
	}

	err := h.jobs.ScheduleSync(tenantID, kind)
	switch {
	case errors.Is(err, scheduler.ErrSyncAlreadyInProgress):
		h.Error(c, http.StatusConflict, dto.ErrCodeConflict, err.Error())
		return
	case errors.Is(err, scheduler.ErrJobQueueFull):
		h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, err.Error())
		return
	case err != nil:
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeProviderUnavailable, err.Error())
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(ScheduleResponse{
		TenantID: tenantID,
		Kind:     kind,
		Status:   string(scheduler.JobStatusPending),
	}))
}

// JobHistory handles GET /system/jobs?limit=
// @ID           listSyncJobs
// @Summary      List sync job history
// @Tags         system
// @Produce      json
// @Param        limit query int false "Limit" default(50)
// @Success      200 {object} APIResponse[[]ReconcileJobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/system/jobs [get]
func (h *SystemHandler) JobHistory(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, []ReconcileJobResponse{})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		h.BadRequest(c, "limit must be between 1 and 500")
		return
	}

	jobs := h.jobs.JobHistory(limit)
	out := make([]ReconcileJobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobResponse(j))
	}
	h.Success(c, out)
}
