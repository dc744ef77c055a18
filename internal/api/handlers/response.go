package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps application errors onto HTTP statuses. Internal
// details are logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeExternal:
			observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Dependency failure")
			respondWithError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
	}

	observability.LoggerFromContext(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a single JSON object from the request body, rejecting
// unknown fields and trailing data
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("request body is required")
		case errors.As(err, &maxErr):
			return apperrors.NewValidationError(fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit))
		default:
			return apperrors.NewValidationError(fmt.Sprintf("invalid request payload: %v", err))
		}
	}
	if decoder.More() {
		return apperrors.NewValidationError("request body must contain a single JSON object")
	}
	return nil
}
