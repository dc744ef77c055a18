package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/notification-orchestrator/internal/api/validation"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
)

// PreferenceService defines the preference operations used by the handler
type PreferenceService interface {
	Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error)
	Set(ctx context.Context, record *entities.PreferencesRecord) (*entities.PreferencesRecord, error)
	Update(ctx context.Context, userID string, update *entities.PreferencesUpdate) (*entities.PreferencesRecord, error)
	Delete(ctx context.Context, userID string) error
}

// PreferenceHandler handles preference-related HTTP requests
type PreferenceHandler struct {
	service   PreferenceService
	validator *validation.Validator
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(service PreferenceService, validator *validation.Validator) *PreferenceHandler {
	return &PreferenceHandler{
		service:   service,
		validator: validator,
	}
}

// GetPreferences handles GET /preferences/{userId}
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	record, err := h.service.Get(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// SetPreferences handles POST /preferences/{userId}, replacing the record
func (h *PreferenceHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	var req validation.PreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.validator.ValidatePreferences(&req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	record, err := req.ToRecord(userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	stored, err := h.service.Set(r.Context(), record)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, stored)
}

// UpdatePreferences handles PUT /preferences/{userId}, merging into the
// existing record
func (h *PreferenceHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	var req validation.PreferencesUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.validator.ValidateUpdate(&req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	update, err := req.ToUpdate()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	merged, err := h.service.Update(r.Context(), userID, update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, merged)
}

// DeletePreferences handles DELETE /preferences/{userId}
func (h *PreferenceHandler) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
