package health

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/inference-server/internal/requestlog"
	modelruntime "github.com/eleven-am/inference-server/internal/runtime"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusDisabled  Status = "disabled"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	MemorySysMB   uint64 `json:"memory_sys_mb"`
	NumGC         uint32 `json:"num_gc"`
}

type RequestStats struct {
	TotalRequests uint64 `json:"total_requests"`
	InFlight      int64  `json:"in_flight"`
}

type ReadinessResponse struct {
	Status        Status                     `json:"status"`
	Model         string                     `json:"model"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Requests      RequestStats               `json:"requests"`
	Runtime       RuntimeStats               `json:"runtime"`
	Components    map[string]ComponentStatus `json:"components"`
}

type RequestsResponse struct {
	Total   int64               `json:"total"`
	Records []requestlog.Record `json:"records"`
}

type Handler struct {
	model     *modelruntime.Handle
	redis     *redis.Client
	db        *gorm.DB
	records   *requestlog.Store
	version   string
	startTime time.Time

	totalRequests uint64
	inFlight      int64
}

func NewHandler(
	model *modelruntime.Handle,
	redisClient *redis.Client,
	db *gorm.DB,
	records *requestlog.Store,
	version string,
) *Handler {
	return &Handler{
		model:     model,
		redis:     redisClient,
		db:        db,
		records:   records,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
	e.GET("/health/requests", h.Requests)
}

func (h *Handler) IncrementRequests() {
	atomic.AddUint64(&h.totalRequests, 1)
}

func (h *Handler) IncrementInFlight() {
	atomic.AddInt64(&h.inFlight, 1)
}

func (h *Handler) DecrementInFlight() {
	atomic.AddInt64(&h.inFlight, -1)
}

// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// @Summary      Readiness probe
// @Description  Probes the model runtime and optional backing services
// @Tags         health
// @Produce      json
// @Success      200  {object}  health.ReadinessResponse
// @Failure      503  {object}  health.ReadinessResponse
// @Router       /health/ready [get]
func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := []struct {
		name  string
		check func(context.Context) ComponentStatus
	}{
		{"runtime", h.checkRuntime},
		{"redis", h.checkRedis},
		{"database", h.checkDatabase},
	}

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	overall := computeOverallStatus(components)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := ReadinessResponse{
		Status:        overall,
		Model:         h.model.Info.Model,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Requests: RequestStats{
			TotalRequests: atomic.LoadUint64(&h.totalRequests),
			InFlight:      atomic.LoadInt64(&h.inFlight),
		},
		Runtime: RuntimeStats{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: memStats.Alloc / 1024 / 1024,
			MemorySysMB:   memStats.Sys / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, resp)
}

// @Summary      Recent requests
// @Description  Returns recent inference request accounting rows
// @Tags         health
// @Produce      json
// @Param        limit  query     int  false  "maximum rows"  default(50)
// @Success      200    {object}  health.RequestsResponse
// @Router       /health/requests [get]
func (h *Handler) Requests(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.records.Recent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	total, _ := h.records.Count(ctx)

	if records == nil {
		records = []requestlog.Record{}
	}
	return c.JSON(http.StatusOK, RequestsResponse{Total: total, Records: records})
}

func (h *Handler) checkRuntime(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.model == nil || h.model.Runtime == nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "runtime not configured",
		}
	}

	if !h.model.Runtime.IsAvailable(ctx) {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "runtime not reachable",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.redis == nil {
		return ComponentStatus{Status: StatusDisabled}
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.db == nil {
		return ComponentStatus{Status: StatusDisabled}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "failed to get underlying db",
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

// computeOverallStatus: the runtime is the only critical component; redis
// and the database only degrade.
func computeOverallStatus(components map[string]ComponentStatus) Status {
	if rt, ok := components["runtime"]; ok && rt.Status == StatusUnhealthy {
		return StatusUnhealthy
	}

	for _, status := range components {
		if status.Status == StatusDegraded || status.Status == StatusUnhealthy {
			return StatusDegraded
		}
	}
	return StatusHealthy
}
