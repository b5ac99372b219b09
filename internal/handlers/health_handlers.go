package handlers

import (
	"context"
	"net/http"
	"time"

	"agencycrm/internal/caching"
	"agencycrm/internal/services"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db      Pinger
	cache   caching.CacheService
	storage services.MinioService
	bucket  string
	version string
	started time.Time
}

func NewHealthHandlers(db Pinger, cache caching.CacheService, storage services.MinioService, bucket, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		storage: storage,
		bucket:  bucket,
		version: version,
		started: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

// HealthCheck reports every dependency. Optional ones degrade the status
// instead of failing it.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Version:   h.version,
	}

	check := func(name string, err error) {
		if err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
			return
		}
		health.Services[name] = "healthy"
	}
	check("database", h.checkDatabase(ctx))
	if h.cache != nil {
		check("redis", h.cache.Ping(ctx))
	}
	if h.storage != nil {
		check("storage", h.checkStorage(ctx))
	}

	statusCode := http.StatusOK
	if health.Services["database"] != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck only requires the database.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.checkDatabase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return errNoDatabase
	}
	return h.db.Ping(ctx)
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	ok, err := h.storage.BucketExists(ctx, h.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return errBucketMissing
	}
	return nil
}
