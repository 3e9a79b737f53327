package session

import (
	"context"
	"errors"

	"sneakerfit-backend/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store keeps session state keyed by the id carried in the session cookie.
//
// Callers that read-modify-write a session must hold the lock returned by
// Lock for the whole sequence; Get and Save do no locking of their own.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// Load returns the stored session, or a fresh empty one if none exists yet.
func Load(ctx context.Context, st Store, id string) (*models.Session, error) {
	s, err := st.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &models.Session{ID: id, ChatHistory: []models.ChatMessage{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
