package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"chatvault/internal/search"
	"chatvault/internal/store/sqlite"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store  *sqlite.Store
	engine *search.Engine
	logger zerolog.Logger
}

// NewHandler creates a new Handler backed by the given store.
func NewHandler(store *sqlite.Store, engine *search.Engine, logger zerolog.Logger) *Handler {
	return &Handler{store: store, engine: engine, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
