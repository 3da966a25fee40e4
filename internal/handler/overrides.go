package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
)

// OverrideQueue defines the pending override operations.
// Satisfied by *service.Authorizer.
type OverrideQueue interface {
	Pending() []service.PendingOverride
	Approve(id uuid.UUID, pin string) error
	Cancel(id uuid.UUID) error
}

// OverrideHandler handles the manager override queue endpoints.
type OverrideHandler struct {
	queue OverrideQueue
}

// NewOverrideHandler creates a new OverrideHandler.
func NewOverrideHandler(queue OverrideQueue) *OverrideHandler {
	return &OverrideHandler{queue: queue}
}

// RegisterRoutes registers override endpoints on the given Chi router.
func (h *OverrideHandler) RegisterRoutes(r chi.Router) {
	r.Get("/overrides", h.List)
	r.Post("/overrides/{id}/approve", h.Approve)
	r.Post("/overrides/{id}/cancel", h.Cancel)
}

type approveRequest struct {
	Pin string `json:"pin"`
}

// List returns parked overrides, oldest first.
func (h *OverrideHandler) List(w http.ResponseWriter, r *http.Request) {
	pending := h.queue.Pending()
	out := make([]pendingResponse, 0, len(pending))
	for i := range pending {
		out = append(out, toPendingResponse(&pending[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Approve executes a parked command after a manager PIN challenge.
func (h *OverrideHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.queue.Approve(id, req.Pin); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// Cancel discards a parked command.
func (h *OverrideHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.queue.Cancel(id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
