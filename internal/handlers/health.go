package handlers

import (
	"context"
	"net/http"
	"time"

	"chatvault/internal/config"
)

// HealthResponse reports service and store health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Store     string `json:"store"`
	Timestamp string `json:"timestamp"`
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	storeStatus := "pass"
	statusCode := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status = "degraded"
		storeStatus = "fail"
		statusCode = http.StatusServiceUnavailable
	}

	h.JSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   config.Version,
		Store:     storeStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
