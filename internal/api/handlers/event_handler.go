package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/notification-orchestrator/internal/api/validation"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
)

// DecisionService defines the decision operation used by the handler
type DecisionService interface {
	Evaluate(ctx context.Context, event *entities.Event) (*entities.Decision, error)
}

// EventHandler handles incoming events
type EventHandler struct {
	service   DecisionService
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(service DecisionService, validator *validation.Validator) *EventHandler {
	return &EventHandler{
		service:   service,
		validator: validator,
	}
}

// IngestEvent handles POST /events. A decision to notify is answered with
// 202 Accepted, a suppression with 200 OK.
func (h *EventHandler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req validation.EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.validator.ValidateEvent(&req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	event, err := req.ToEntity()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	decision, err := h.service.Evaluate(r.Context(), event)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	status := http.StatusOK
	if decision.ShouldNotify() {
		status = http.StatusAccepted
	}
	respondWithJSON(w, status, decision)
}
