package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sneakerfit-backend/internal/models"
	"sneakerfit-backend/internal/session"
)

const resetStatus = "conversation reset"

// ChatService owns the conversation bookkeeping for a session.
type ChatService struct {
	sessions session.Store
	ai       Assistant
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewChatService(sessions session.Store, ai Assistant, log *zap.SugaredLogger) *ChatService {
	return &ChatService{sessions: sessions, ai: ai, log: log, now: time.Now}
}

// Send runs one chat turn for the session.
func (s *ChatService) Send(ctx context.Context, sessionID string, req models.ChatRequest) (*models.ChatResponse, error) {
	if err := s.validate(req.Message); err != nil {
		return nil, err
	}

	return s.converse(ctx, sessionID, req.Message, func(history []models.ChatMessage) (string, error) {
		return s.ai.Chat(ctx, SneakerFitContext, history, req.Message)
	})
}

// SendStream is Send with the reply delivered incrementally through onChunk.
func (s *ChatService) SendStream(ctx context.Context, sessionID, message string, onChunk func(string) error) (*models.ChatResponse, error) {
	if err := s.validate(message); err != nil {
		return nil, err
	}

	return s.converse(ctx, sessionID, message, func(history []models.ChatMessage) (string, error) {
		return s.ai.ChatStream(ctx, SneakerFitContext, history, message, onChunk)
	})
}

// Reset clears the history and issues a new conversation id.
func (s *ChatService) Reset(ctx context.Context, sessionID string) (*models.ResetResponse, error) {
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer unlock()

	sess, err := session.Load(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}

	sess.ChatHistory = []models.ChatMessage{}
	sess.ConversationID = uuid.NewString()
	sess.UpdatedAt = s.now().UTC()

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.log.Infow("Conversation reset", "session_id", sessionID, "conversation_id", sess.ConversationID)
	return &models.ResetResponse{Status: resetStatus, ConversationID: sess.ConversationID}, nil
}

func (s *ChatService) validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return &ValidationError{Message: "No message provided"}
	}
	if !s.ai.Available() {
		return &ServiceUnavailableError{Message: "AI service unavailable"}
	}
	return nil
}

// converse holds the session lock across the model call so turns from
// concurrent requests on one session cannot interleave. Turns are only
// committed once the model has answered.
func (s *ChatService) converse(ctx context.Context, sessionID, message string, ask func([]models.ChatMessage) (string, error)) (*models.ChatResponse, error) {
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer unlock()

	sess, err := session.Load(ctx, s.sessions, sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := ask(sess.ChatHistory)
	if err != nil {
		return nil, err
	}

	sess.ChatHistory = append(sess.ChatHistory,
		models.ChatMessage{Role: models.RoleUser, Content: message},
		models.ChatMessage{Role: models.RoleAssistant, Content: reply},
	)
	if sess.ConversationID == "" {
		sess.ConversationID = uuid.NewString()
	}
	sess.UpdatedAt = s.now().UTC()

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &models.ChatResponse{Response: reply, ConversationID: sess.ConversationID}, nil
}
