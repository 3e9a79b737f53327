package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"sneakerfit-backend/internal/models"
	"sneakerfit-backend/internal/storage"
)

type ImageService struct {
	uploads *storage.UploadStore
	ai      Assistant
	log     *zap.SugaredLogger
}

func NewImageService(uploads *storage.UploadStore, ai Assistant, log *zap.SugaredLogger) *ImageService {
	return &ImageService{uploads: uploads, ai: ai, log: log}
}

// Analyze stores the upload for the duration of the model call and removes it
// afterwards, whatever the outcome.
func (s *ImageService) Analyze(ctx context.Context, file io.Reader, filename, query string) (*models.ImageAnalysisResponse, error) {
	if filename == "" {
		return nil, &ValidationError{Message: "No image selected"}
	}
	if !storage.AllowedFile(filename) {
		return nil, &ValidationError{Message: "File type not allowed"}
	}
	if !s.ai.Available() {
		return nil, &ServiceUnavailableError{Message: "AI image service unavailable"}
	}
	if strings.TrimSpace(query) == "" {
		query = DefaultImageQuery
	}

	upload, err := s.uploads.Save(file, filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := upload.Remove(); err != nil {
			s.log.Warnw("Failed to remove upload", "path", upload.Path, "error", err)
		}
	}()

	data, err := upload.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	reply, err := s.ai.AnalyzeImage(ctx, SneakerImagePrompt, buildImageQuery(query), data, upload.MIMEType)
	if err != nil {
		return nil, err
	}

	return &models.ImageAnalysisResponse{Response: reply}, nil
}
