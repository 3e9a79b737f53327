package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sneakerfit-backend/internal/middleware"
	"sneakerfit-backend/internal/models"
	"sneakerfit-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get(middleware.RequestIDHeader),
		},
	}
}

// handleServiceError maps typed service errors to responses. Anything else is
// logged and answered with a generic 500 so internals never reach the client.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, err error) {
	var (
		verr *services.ValidationError
		uerr *services.ServiceUnavailableError
		perr *services.PayloadTooLargeError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", verr.Message, r))
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("SERVICE_UNAVAILABLE", uerr.Message, r))
	case errors.As(err, &perr):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", perr.Message, r))
	default:
		log.Errorw("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(middleware.RequestIDHeader),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
