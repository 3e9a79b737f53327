package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"sneakerfit-backend/internal/models"
	"sneakerfit-backend/internal/services"
)

// Parts beyond this are spooled to temp files by the multipart reader.
const multipartMemory = 8 << 20

type imageService interface {
	Analyze(ctx context.Context, file io.Reader, filename, query string) (*models.ImageAnalysisResponse, error)
}

type ImageHandler struct {
	images   imageService
	maxBytes int64
	log      *zap.SugaredLogger
}

func NewImageHandler(images imageService, maxBytes int64, log *zap.SugaredLogger) *ImageHandler {
	return &ImageHandler{images: images, maxBytes: maxBytes, log: log}
}

func (h *ImageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	tooLarge := &services.PayloadTooLargeError{Message: "File too large"}

	if h.maxBytes > 0 {
		if r.ContentLength > h.maxBytes {
			handleServiceError(w, r, h.log, tooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handleServiceError(w, r, h.log, tooLarge)
			return
		}
		handleServiceError(w, r, h.log, &services.ValidationError{Message: "No image provided"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		handleServiceError(w, r, h.log, &services.ValidationError{Message: "No image provided"})
		return
	}
	defer file.Close()

	resp, err := h.images.Analyze(r.Context(), file, header.Filename, r.FormValue("query"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
