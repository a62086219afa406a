package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreInfo describes the loaded QA store.
type StoreInfo interface {
	Len() int
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	store StoreInfo
	db    Pinger
}

// NewProbeHandler creates a new probe handler. database may be nil when no
// component uses Postgres.
func NewProbeHandler(store StoreInfo, database Pinger) *ProbeHandler {
	return &ProbeHandler{store: store, db: database}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK once the QA store is loaded and the database, if any, is reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.store == nil || h.store.Len() == 0 {
		return jsonError(c, fiber.StatusServiceUnavailable, "qa store not loaded")
	}

	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
		}
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"records": h.store.Len(),
	})
}
