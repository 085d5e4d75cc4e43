package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/users-api/internal/http/respond"
	"github.com/hongminglow/users-api/internal/logger"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

// handle godoc
// @Summary Health check
// @Description Report uptime and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} respond.Envelope{data=healthStatus}
// @Failure 503 {object} respond.Envelope{data=healthStatus}
// @Router /health [get]
func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.Warn(r.Context()).Err(err).Msg("health check: database unreachable")
		status.Status = "unavailable"
		respond.JSON(w, http.StatusServiceUnavailable, "database unreachable", status)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", status)
}

type healthStatus struct {
	Status string `json:"status" example:"ok"`
	Uptime string `json:"uptime" example:"1h2m3s"`
}
