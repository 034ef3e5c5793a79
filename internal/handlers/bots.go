package handlers

import "net/http"

// BotsResponse lists the distinct bot names present in the store.
type BotsResponse struct {
	Bots []string `json:"bots"`
}

// Bots handles the index endpoint: the available bot names, alphabetical.
// A store failure degrades to an empty list rather than a hard error.
func (h *Handler) Bots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.ListBots(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list bots failed")
		bots = []string{}
	}
	if bots == nil {
		bots = []string{}
	}
	h.JSON(w, http.StatusOK, BotsResponse{Bots: bots})
}
