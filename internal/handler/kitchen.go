package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/kitchen"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
	"github.com/mehrabrahat/ITZENBD-POS/internal/ws"
)

// TicketSource defines the ticket projection needed by kitchen handlers.
// Satisfied by *kitchen.Router.
type TicketSource interface {
	Tickets(station string) []kitchen.Ticket
}

// KitchenServicer defines the status advances the kitchen may perform.
// Satisfied by *service.OrderService.
type KitchenServicer interface {
	StartPreparing(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error)
	MarkReady(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error)
	SetItemStatus(actor domain.Actor, orderID, itemID uuid.UUID, status string) (*domain.Order, error)
}

// KitchenHandler handles kitchen display endpoints.
type KitchenHandler struct {
	tickets TicketSource
	svc     KitchenServicer
	hub     Broadcaster
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(tickets TicketSource, svc KitchenServicer, hub Broadcaster) *KitchenHandler {
	return &KitchenHandler{tickets: tickets, svc: svc, hub: hub}
}

// RegisterRoutes registers kitchen endpoints on the given Chi router.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/kitchen/tickets", h.List)
	r.Post("/kitchen/orders/{id}/start", h.Start)
	r.Post("/kitchen/orders/{id}/ready", h.Ready)
	r.Patch("/kitchen/orders/{id}/items/{itemID}/status", h.SetItemStatus)
}

// --- Response types ---

type ticketResponse struct {
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	TableNumber *int                `json:"table_number,omitempty"`
	Items       []orderItemResponse `json:"items"`
	ElapsedMin  int                 `json:"elapsed_min"`
	Delayed     bool                `json:"delayed"`
}

func toTicketResponse(t kitchen.Ticket) ticketResponse {
	items := make([]orderItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, orderItemResponse{
			ID:            it.ID,
			MenuItemID:    it.MenuItemID,
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice.StringFixed(2),
			Modifiers:     it.Modifiers,
			Notes:         it.Notes,
			Status:        it.Status,
			Station:       it.Station,
			DiscountValue: it.DiscountValue.String(),
			DiscountType:  it.DiscountType,
		})
	}
	return ticketResponse{
		OrderID:     t.OrderID,
		OrderNumber: t.OrderNumber,
		Type:        t.Type,
		Status:      t.Status,
		TableNumber: t.TableNumber,
		Items:       items,
		ElapsedMin:  t.ElapsedMin,
		Delayed:     t.Delayed,
	}
}

// --- Handlers ---

// List returns the ticket queue, optionally filtered by ?station=.
func (h *KitchenHandler) List(w http.ResponseWriter, r *http.Request) {
	station := r.URL.Query().Get("station")
	if station != "" && station != enum.StationAll && !enum.ValidStation(station) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid station"})
		return
	}
	tickets := h.tickets.Tickets(station)
	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// Start moves a submitted order onto the line.
func (h *KitchenHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.svc.StartPreparing)
}

// Ready completes the whole ticket.
func (h *KitchenHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, h.svc.MarkReady)
}

func (h *KitchenHandler) advance(w http.ResponseWriter, r *http.Request, fn func(domain.Actor, uuid.UUID) (*domain.Order, error)) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	o, err := fn(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.broadcast("ticket.updated", o)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type itemStatusRequest struct {
	Status string `json:"status"`
}

// SetItemStatus advances a single item's preparation state.
func (h *KitchenHandler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	var req itemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	o, err := h.svc.SetItemStatus(actor, id, itemID, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.broadcast("item.updated", o)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *KitchenHandler) broadcast(eventType string, o *domain.Order) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(toOrderResponse(o))
	if err != nil {
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: payload})
}
