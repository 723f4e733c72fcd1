package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/tracker/pkg/api"
)

// Pinger checks that the storage is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	db     Pinger
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
	}
}

// Health обрабатывает GET /api/v1/health
// Endpoint не требует аутентификации: клиенты опрашивают его для определения connectivity
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("Health check failed", "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	})
}
