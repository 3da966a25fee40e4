package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
)

// TableStore defines the floor plan reads needed by table handlers.
// Satisfied by *store.Store.
type TableStore interface {
	ListTables() []domain.Table
	GetTable(id uuid.UUID) (domain.Table, bool)
	ActiveOrderForTable(tableID uuid.UUID) (*domain.Order, bool)
}

// TableOpener opens or resumes the order attached to a table.
// Satisfied by *service.OrderService.
type TableOpener interface {
	OpenTable(actor domain.Actor, tableID uuid.UUID) (*domain.Order, error)
}

// TableHandler handles floor plan endpoints.
type TableHandler struct {
	store TableStore
	svc   TableOpener
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, svc TableOpener) *TableHandler {
	return &TableHandler{store: store, svc: svc}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tables", h.List)
	r.Post("/tables/{id}/order", h.OpenOrder)
}

type tableResponse struct {
	ID            uuid.UUID  `json:"id"`
	Number        int        `json:"number"`
	Capacity      int        `json:"capacity"`
	Status        string     `json:"status"`
	ActiveOrderID *uuid.UUID `json:"active_order_id,omitempty"`
}

// List returns the floor plan with the active order attached to each table.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables := h.store.ListTables()
	out := make([]tableResponse, 0, len(tables))
	for _, t := range tables {
		resp := tableResponse{
			ID:       t.ID,
			Number:   t.Number,
			Capacity: t.Capacity,
			Status:   t.Status,
		}
		if o, ok := h.store.ActiveOrderForTable(t.ID); ok {
			oid := o.ID
			resp.ActiveOrderID = &oid
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// OpenOrder resumes the table's active order or starts a fresh draft.
func (h *TableHandler) OpenOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.OpenTable(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}
