package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/keaunie/elev8kitchens-backend/internal/chat"
)

type ChatHandler struct {
	transcripts chat.Repository
}

func NewChatHandler(transcripts chat.Repository) *ChatHandler {
	return &ChatHandler{transcripts: transcripts}
}

type PostMessageRequestDTO struct {
	Role string `json:"role"`
	Body string `json:"body"`
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	messages, err := h.transcripts.History(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load chat history")
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}

	respondJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	var req PostMessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	msg := &chat.Message{
		SessionID: sessionID,
		Role:      chat.Role(req.Role),
		Body:      req.Body,
	}
	if err := h.transcripts.Append(r.Context(), msg); err != nil {
		if errors.Is(err, chat.ErrEmptyBody) {
			respondError(w, http.StatusBadRequest, "empty_body", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to store message")
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}
