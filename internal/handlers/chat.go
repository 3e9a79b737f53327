package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"sneakerfit-backend/internal/middleware"
	"sneakerfit-backend/internal/models"
	"sneakerfit-backend/internal/services"
)

type chatService interface {
	Send(ctx context.Context, sessionID string, req models.ChatRequest) (*models.ChatResponse, error)
	Reset(ctx context.Context, sessionID string) (*models.ResetResponse, error)
}

// resetNotifier pushes reset events to the session's open stream sockets.
type resetNotifier interface {
	SendToSession(sessionID string, msg models.WSMessage)
}

type ChatHandler struct {
	chat     chatService
	notifier resetNotifier
	log      *zap.SugaredLogger
}

func NewChatHandler(chat chatService, notifier resetNotifier, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{chat: chat, notifier: notifier, log: log}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, r, h.log, &services.ValidationError{Message: "Invalid request body"})
		return
	}

	resp, err := h.chat.Send(r.Context(), middleware.GetSessionID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	resp, err := h.chat.Reset(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	if h.notifier != nil {
		h.notifier.SendToSession(sessionID, models.WSMessage{
			Type:           models.WSTypeReset,
			ConversationID: resp.ConversationID,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
