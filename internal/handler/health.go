package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/biv3k224/ecommerce/internal/infrastructure/redis"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewHealthHandler creates a new health handler. redisClient may be nil
// when the in-memory cache backend is in use.
func NewHealthHandler(db *sql.DB, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz - returns 200 only when the dependencies
// the service cannot run without are reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	// Redis is optional; an unreachable cache degrades but does not
	// make the service unready.
	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})

	h.logger.Debug("readiness check",
		slog.String("status", status),
		slog.String("database", checks["database"]),
		slog.String("redis", checks["redis"]),
	)
}
