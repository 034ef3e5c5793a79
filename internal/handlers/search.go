package handlers

import (
	"net/http"
	"strconv"

	"chatvault/internal/metrics"
	"chatvault/internal/search"
)

// Search handles the search endpoint. The query string supports `+required`
// and `-forbidden` prefixes; repeated `bot` parameters narrow to one bot
// (the first non-empty value, matching the historical behavior of the tool
// this service replaced).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	var bot string
	for _, candidate := range r.URL.Query()["bot"] {
		if candidate != "" {
			bot = candidate
			break
		}
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	pageSize := search.DefaultPageSize
	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			pageSize = s
		}
	}

	metrics.SearchQueries.Inc()

	filter := search.Parse(query)
	filter.Bot = bot

	result, err := h.engine.Search(r.Context(), filter, page, pageSize)
	if err != nil {
		// Store unavailable: answer with a zeroed page, never a hard failure.
		h.logger.Error().Err(err).Str("query", query).Msg("search failed")
	}
	h.JSON(w, http.StatusOK, result)
}
