package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ashureev/careerdesk/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo    store.Repository
	timeout time.Duration
	ai      bool
	logger  *zap.Logger
}

// NewHealthHandler creates a health handler. aiEnabled is reported as a
// check but never degrades the status.
func NewHealthHandler(repo store.Repository, aiEnabled bool, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{repo: repo, timeout: 5 * time.Second, ai: aiEnabled, logger: logger}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := map[string]string{"api": "ok", "ai": "disabled"}
	if h.ai {
		checks["ai"] = "configured"
	}
	status := map[string]any{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		status["status"] = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
