package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
	"github.com/mehrabrahat/ITZENBD-POS/internal/ws"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Get(id uuid.UUID) (*domain.Order, error)
	List(status string) []*domain.Order
	Submit(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error)
	Pay(actor domain.Actor, orderID uuid.UUID, method string) (*domain.Order, error)
	Void(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error)
	AddItem(actor domain.Actor, orderID, menuItemID uuid.UUID) (*domain.Order, error)
	UpdateQuantity(actor domain.Actor, orderID, itemID uuid.UUID, delta int) (*service.QuantityResult, error)
	ToggleModifier(actor domain.Actor, orderID, itemID, modifierID uuid.UUID) (*domain.Order, error)
	AddCustomModifier(actor domain.Actor, orderID, itemID uuid.UUID, name string, price decimal.Decimal) (*domain.Order, error)
	RemoveModifier(actor domain.Actor, orderID, itemID, modifierID uuid.UUID) (*domain.Order, error)
	ApplyItemDiscount(actor domain.Actor, orderID, itemID uuid.UUID, value decimal.Decimal, discountType string) (*domain.Order, error)
	SetOrderDiscount(actor domain.Actor, orderID uuid.UUID, value decimal.Decimal, discountType string) (*domain.Order, error)
	SetItemNotes(actor domain.Actor, orderID, itemID uuid.UUID, notes string) (*domain.Order, error)
}

// Broadcaster pushes order events to connected kitchen displays.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToStation(station string, event ws.Event)
	Broadcast(event ws.Event)
}

// OrderHandler handles order registry and lifecycle endpoints.
type OrderHandler struct {
	svc OrderServicer
	hub Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders/{id}/submit", h.Submit)
	r.Post("/orders/{id}/pay", h.Pay)
	r.Post("/orders/{id}/void", h.Void)
	r.Patch("/orders/{id}/discount", h.SetDiscount)
	r.Post("/orders/{id}/items", h.AddItem)
	r.Patch("/orders/{id}/items/{itemID}/quantity", h.UpdateQuantity)
	r.Patch("/orders/{id}/items/{itemID}/notes", h.SetNotes)
	r.Patch("/orders/{id}/items/{itemID}/discount", h.SetItemDiscount)
	r.Post("/orders/{id}/items/{itemID}/modifiers", h.AddCustomModifier)
	r.Put("/orders/{id}/items/{itemID}/modifiers/{modifierID}", h.ToggleModifier)
	r.Delete("/orders/{id}/items/{itemID}/modifiers/{modifierID}", h.RemoveModifier)
}

// --- Request / Response types ---

type addItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type discountRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type customModifierRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type payRequest struct {
	Method string `json:"method"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TableID       *uuid.UUID          `json:"table_id"`
	OrderNumber   string              `json:"order_number"`
	ReceiptNumber string              `json:"receipt_number,omitempty"`
	ReprintCount  int                 `json:"reprint_count"`
	Status        string              `json:"status"`
	Type          string              `json:"type"`
	Items         []orderItemResponse `json:"items"`
	Subtotal      string              `json:"subtotal"`
	DiscountValue string              `json:"discount_value"`
	DiscountType  string              `json:"discount_type"`
	Tax           string              `json:"tax"`
	ServiceCharge string              `json:"service_charge"`
	Total         string              `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	PaymentMethod string              `json:"payment_method,omitempty"`
}

type orderItemResponse struct {
	ID            uuid.UUID         `json:"id"`
	MenuItemID    uuid.UUID         `json:"menu_item_id"`
	Name          string            `json:"name"`
	Quantity      int               `json:"quantity"`
	UnitPrice     string            `json:"unit_price"`
	Modifiers     []domain.Modifier `json:"modifiers"`
	Notes         string            `json:"notes,omitempty"`
	Status        string            `json:"status"`
	Station       string            `json:"station"`
	DiscountValue string            `json:"discount_value"`
	DiscountType  string            `json:"discount_type"`
}

type pendingResponse struct {
	PendingID   uuid.UUID `json:"pending_id"`
	Action      string    `json:"action"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
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
	return orderResponse{
		ID:            o.ID,
		TableID:       o.TableID,
		OrderNumber:   o.OrderNumber,
		ReceiptNumber: o.ReceiptNumber,
		ReprintCount:  o.ReprintCount,
		Status:        o.Status,
		Type:          o.Type,
		Items:         items,
		Subtotal:      o.Subtotal.StringFixed(2),
		DiscountValue: o.DiscountValue.String(),
		DiscountType:  o.DiscountType,
		Tax:           o.Tax.StringFixed(2),
		ServiceCharge: o.ServiceCharge.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		CreatedAt:     o.CreatedAt,
		PaidAt:        o.PaidAt,
		PaymentMethod: o.PaymentMethod,
	}
}

func toPendingResponse(p *service.PendingOverride) pendingResponse {
	return pendingResponse{
		PendingID:   p.ID,
		Action:      p.Action,
		RequestedBy: p.RequestedBy.Name,
		RequestedAt: p.RequestedAt,
	}
}

// --- Handlers ---

// List returns all orders, optionally filtered by ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders := h.svc.List(r.URL.Query().Get("status"))
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Submit sends the order to the kitchen and notifies the stations involved.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Submit(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.broadcastToStations(o, "ticket.created")
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	o, err := h.svc.Pay(actor, id, req.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.broadcastEvent("order.paid", o)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Void(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Void(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.broadcastEvent("order.voided", o)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
		return
	}
	o, err := h.svc.AddItem(actor, id, menuItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// UpdateQuantity applies a quantity delta. A reduction on a sent order may
// come back parked behind a manager override, reported as 202 Accepted.
func (h *OrderHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	res, err := h.svc.UpdateQuantity(actor, id, itemID, req.Delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Pending != nil {
		writeJSON(w, http.StatusAccepted, toPendingResponse(res.Pending))
		return
	}
	h.broadcastToStations(res.Order, "ticket.updated")
	writeJSON(w, http.StatusOK, toOrderResponse(res.Order))
}

func (h *OrderHandler) ToggleModifier(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	modifierID, ok := parseID(w, r, "modifierID")
	if !ok {
		return
	}
	o, err := h.svc.ToggleModifier(actor, id, itemID, modifierID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) AddCustomModifier(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	var req customModifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}
	o, err := h.svc.AddCustomModifier(actor, id, itemID, req.Name, price)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) RemoveModifier(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	modifierID, ok := parseID(w, r, "modifierID")
	if !ok {
		return
	}
	o, err := h.svc.RemoveModifier(actor, id, itemID, modifierID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) SetItemDiscount(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	value, discountType, ok := decodeDiscount(w, r)
	if !ok {
		return
	}
	o, err := h.svc.ApplyItemDiscount(actor, id, itemID, value, discountType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	value, discountType, ok := decodeDiscount(w, r)
	if !ok {
		return
	}
	o, err := h.svc.SetOrderDiscount(actor, id, value, discountType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	itemID, ok := parseID(w, r, "itemID")
	if !ok {
		return
	}
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	o, err := h.svc.SetItemNotes(actor, id, itemID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// --- Helpers ---

func (h *OrderHandler) actorAndID(w http.ResponseWriter, r *http.Request) (domain.Actor, uuid.UUID, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return domain.Actor{}, uuid.Nil, false
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return domain.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func decodeDiscount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, string, bool) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return decimal.Zero, "", false
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil || value.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discount value"})
		return decimal.Zero, "", false
	}
	return value, req.Type, true
}

// broadcastToStations notifies every station holding items of this order.
func (h *OrderHandler) broadcastToStations(o *domain.Order, eventType string) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(toOrderResponse(o))
	if err != nil {
		return
	}
	seen := map[string]bool{}
	for _, it := range o.Items {
		if seen[it.Station] {
			continue
		}
		seen[it.Station] = true
		h.hub.BroadcastToStation(it.Station, ws.Event{Type: eventType, Payload: payload})
	}
}

func (h *OrderHandler) broadcastEvent(eventType string, o *domain.Order) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(toOrderResponse(o))
	if err != nil {
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: payload})
}
