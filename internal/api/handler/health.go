package handler

import (
	"net/http"

	"github.com/mcoot/arenagame-go/internal/api/response"
)

// Counter reports a live count for the health check
type Counter func() int

// HealthHandler reports liveness with a few gauges
type HealthHandler struct {
	rooms       Counter
	connections Counter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(rooms, connections Counter) *HealthHandler {
	return &HealthHandler{rooms: rooms, connections: connections}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Rooms:       h.rooms(),
		Connections: h.connections(),
	})
}
