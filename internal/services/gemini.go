package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"sneakerfit-backend/internal/models"
)

// Assistant is the boundary to the hosted generative model.
type Assistant interface {
	Available() bool
	Chat(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string) (string, error)
	ChatStream(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string, onChunk func(string) error) (string, error)
	AnalyzeImage(ctx context.Context, systemPrompt, query string, image []byte, mimeType string) (string, error)
}

type GeminiConfig struct {
	APIKey         string
	ChatModel      string
	VisionModel    string
	ConcurrentReqs int
	Timeout        time.Duration
}

type GeminiService struct {
	client      *genai.Client
	chatModel   string
	visionModel string
	timeout     time.Duration
	rateChan    chan struct{} // Token bucket
	log         *zap.SugaredLogger
}

// NewGeminiService builds the Gemini adapter. An empty API key yields a
// service whose calls fail with ServiceUnavailableError.
func NewGeminiService(ctx context.Context, cfg GeminiConfig, log *zap.SugaredLogger) (*GeminiService, error) {
	if cfg.ConcurrentReqs < 1 {
		cfg.ConcurrentReqs = 1
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, cfg.ConcurrentReqs)
	for i := 0; i < cfg.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	s := &GeminiService{
		chatModel:   cfg.ChatModel,
		visionModel: cfg.VisionModel,
		timeout:     cfg.Timeout,
		rateChan:    rateChan,
		log:         log,
	}

	if cfg.APIKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *GeminiService) Available() bool {
	return s.client != nil
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiService) begin(ctx context.Context) (context.Context, func(), error) {
	if s.client == nil {
		return nil, nil, &ServiceUnavailableError{Message: "AI service unavailable"}
	}
	if err := s.acquireRate(ctx); err != nil {
		return nil, nil, err
	}

	cancel := func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {
		cancel()
		s.releaseRate()
	}, nil
}

// startChat opens a stateless chat primed with the system prompt and the
// prior turns of the conversation.
func (s *GeminiService) startChat(systemPrompt string, history []models.ChatMessage) *genai.ChatSession {
	model := s.client.GenerativeModel(s.chatModel)
	model.SetTemperature(0.7)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	cs := model.StartChat()
	cs.History = buildHistory(history)
	return cs
}

// Chat replays history and returns the reply to message.
func (s *GeminiService) Chat(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string) (string, error) {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	resp, err := s.startChat(systemPrompt, history).SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini chat error: %w", err)
	}
	s.logFinish("chat", resp)

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", errors.New("Gemini returned empty chat response")
	}
	return text, nil
}

// ChatStream behaves like Chat but hands each generated chunk to onChunk as it
// arrives. An error from onChunk aborts the stream.
func (s *GeminiService) ChatStream(ctx context.Context, systemPrompt string, history []models.ChatMessage, message string, onChunk func(string) error) (string, error) {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	iter := s.startChat(systemPrompt, history).SendMessageStream(ctx, genai.Text(message))

	var full strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("Gemini stream error: %w", err)
		}

		chunk := extractText(resp)
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return "", err
		}
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		return "", errors.New("Gemini returned empty chat response")
	}
	return text, nil
}

// AnalyzeImage sends the system prompt, the user's query and the raw image to
// the vision model.
func (s *GeminiService) AnalyzeImage(ctx context.Context, systemPrompt, query string, image []byte, mimeType string) (string, error) {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if len(image) == 0 {
		return "", errors.New("image payload is empty")
	}

	model := s.client.GenerativeModel(s.visionModel)
	model.SetTemperature(0.4)

	resp, err := model.GenerateContent(ctx,
		genai.Text(systemPrompt),
		genai.Text(query),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini vision error: %w", err)
	}
	s.logFinish("vision", resp)

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", errors.New("Gemini returned empty image analysis")
	}
	return text, nil
}

func (s *GeminiService) logFinish(call string, resp *genai.GenerateContentResponse) {
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			s.log.Warnw("Gemini stopped early", "call", call, "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}
}

// Helper functions

// buildHistory maps stored turns onto Gemini roles. Assistant turns are
// replayed as "model" so the chat keeps both sides of the conversation.
func buildHistory(turns []models.ChatMessage) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return history
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
