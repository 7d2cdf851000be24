package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chillfilm/chillfilm-api/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// DatabaseChecker verifies database connectivity
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db          DatabaseChecker
	environment string
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db DatabaseChecker, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		environment: environment,
		logger:      logger,
	}
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteMessage(w, "Backend ChillFilm API is running", map[string]string{
		"environment": h.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleHealth handles GET /healthz
// Liveness only; always 200 while the process serves requests
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status, httpStatus := "healthy", http.StatusOK

	switch {
	case h.db == nil:
		checks["database"] = "not_configured"
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	default:
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			status, httpStatus = "unhealthy", http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}
	}

	response := utils.Response{
		Success: httpStatus == http.StatusOK,
		Data: HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		},
	}
	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
