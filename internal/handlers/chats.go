package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatvault/internal/domain"
	"chatvault/internal/extract"
	"chatvault/internal/store/sqlite"
)

// ChatMessage is one message of a detail view with its extracted text
// attached alongside the original value.
type ChatMessage struct {
	Text     string         `json:"text"`
	Original domain.Message `json:"original"`
}

// ChatDetailResponse is the full message list of one chat.
type ChatDetailResponse struct {
	BotName   string        `json:"bot_name"`
	ChatTitle string        `json:"chat_title"`
	ChatID    string        `json:"chat_id"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatDetail handles the chat-detail endpoint, addressed by external chat id.
func (h *Handler) ChatDetail(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	record, err := h.store.GetChat(r.Context(), chatID)
	h.respondChatDetail(w, record, err, chatID)
}

// BotChatDetail handles detail lookups by the natural (bot, chat id) key.
func (h *Handler) BotChatDetail(w http.ResponseWriter, r *http.Request) {
	botName := chi.URLParam(r, "botName")
	chatID := chi.URLParam(r, "chatID")

	record, err := h.store.GetBotChat(r.Context(), botName, chatID)
	h.respondChatDetail(w, record, err, chatID)
}

func (h *Handler) respondChatDetail(w http.ResponseWriter, record domain.ChatRecord, err error, chatID string) {
	if errors.Is(err, sqlite.ErrNotFound) {
		h.Error(w, http.StatusNotFound, "chat not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("chat_id", chatID).Msg("chat lookup failed")
		h.Error(w, http.StatusNotFound, "chat not found")
		return
	}

	var messages []domain.Message
	if err := json.Unmarshal([]byte(record.Messages), &messages); err != nil {
		// A record whose blob no longer parses is as good as absent.
		h.logger.Warn().Err(err).Str("chat_id", chatID).Msg("malformed messages blob")
		h.Error(w, http.StatusNotFound, "chat not found")
		return
	}

	detail := ChatDetailResponse{
		BotName:   record.BotName,
		ChatTitle: record.ChatTitle,
		ChatID:    record.ChatID,
		Messages:  make([]ChatMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		detail.Messages = append(detail.Messages, ChatMessage{
			Text:     extract.Text(map[string]any(msg)),
			Original: msg,
		})
	}
	h.JSON(w, http.StatusOK, detail)
}
