// Package api wires the HTTP surface of the search service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"chatvault/internal/api/middleware"
	"chatvault/internal/handlers"
	"chatvault/internal/search"
	"chatvault/internal/store/sqlite"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, store *sqlite.Store, engine *search.Engine) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Read-only API, consumed by a separately hosted presentation layer.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := handlers.NewHandler(store, engine, logger)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/bots", h.Bots)
		r.Get("/search", h.Search)
		r.Get("/chats/{chatID}", h.ChatDetail)
		r.Get("/chats/{botName}/{chatID}", h.BotChatDetail)
	})

	return r
}
