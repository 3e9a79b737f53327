package services

import (
	"context"
	"sync"
	"time"

	"sneakerfit-backend/internal/models"
)

type recordedCall struct {
	systemPrompt string
	history      []models.ChatMessage
	message      string
	query        string
	image        []byte
	mimeType     string
}

type stubAssistant struct {
	mu        sync.Mutex
	available bool
	reply     string
	chunks    []string
	err       error
	calls     []recordedCall
	onImage   func()
	delay     time.Duration
}

func newStubAssistant(reply string) *stubAssistant {
	return &stubAssistant{available: true, reply: reply}
}

func (s *stubAssistant) Available() bool { return s.available }

func (s *stubAssistant) record(c recordedCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.history = append([]models.ChatMessage(nil), c.history...)
	s.calls = append(s.calls, c)
}

func (s *stubAssistant) lastCall() recordedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *stubAssistant) Chat(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string) (string, error) {
	s.record(recordedCall{systemPrompt: systemPrompt, history: history, message: message})
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubAssistant) ChatStream(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string, onChunk func(string) error) (string, error) {
	s.record(recordedCall{systemPrompt: systemPrompt, history: history, message: message})
	if s.err != nil {
		return "", s.err
	}
	for _, c := range s.chunks {
		if err := onChunk(c); err != nil {
			return "", err
		}
	}
	return s.reply, nil
}

func (s *stubAssistant) AnalyzeImage(ctx context.Context, systemPrompt, query string, image []byte, mimeType string) (string, error) {
	s.record(recordedCall{systemPrompt: systemPrompt, query: query, image: image, mimeType: mimeType})
	if s.onImage != nil {
		s.onImage()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}
