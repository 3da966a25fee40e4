package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/middleware"
	"github.com/mehrabrahat/ITZENBD-POS/internal/receipt"
)

// ReceiptReader resolves the order and table behind a receipt.
type ReceiptReader interface {
	Get(id uuid.UUID) (*domain.Order, error)
}

// Reprinter bumps the reprint counter on a paid order.
// Satisfied by *service.OrderService.
type Reprinter interface {
	Reprint(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error)
}

// ReceiptHandler handles receipt rendering and reprints.
type ReceiptHandler struct {
	orders    ReceiptReader
	reprinter Reprinter
	tables    receipt.TableResolver
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(orders ReceiptReader, reprinter Reprinter, tables receipt.TableResolver) *ReceiptHandler {
	return &ReceiptHandler{orders: orders, reprinter: reprinter, tables: tables}
}

// RegisterRoutes registers receipt endpoints on the given Chi router.
func (h *ReceiptHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/{id}/receipt", h.Get)
	r.Post("/orders/{id}/receipt/reprint", h.Reprint)
}

// --- Response types ---

type receiptLineResponse struct {
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice string            `json:"unit_price"`
	Modifiers []domain.Modifier `json:"modifiers,omitempty"`
	Discount  string            `json:"discount"`
	LineTotal string            `json:"line_total"`
}

type receiptResponse struct {
	ReceiptNumber string                `json:"receipt_number"`
	OrderNumber   string                `json:"order_number"`
	Type          string                `json:"type"`
	PaymentMethod string                `json:"payment_method"`
	PaidAt        time.Time             `json:"paid_at"`
	TableNumber   *int                  `json:"table_number,omitempty"`
	Lines         []receiptLineResponse `json:"lines"`
	Subtotal      string                `json:"subtotal"`
	Discount      string                `json:"discount"`
	Tax           string                `json:"tax"`
	ServiceCharge string                `json:"service_charge"`
	Total         string                `json:"total"`
	ReprintCount  int                   `json:"reprint_count"`
	Label         string                `json:"label"`
}

func toReceiptResponse(v *receipt.View) receiptResponse {
	lines := make([]receiptLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, receiptLineResponse{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Modifiers: l.Modifiers,
			Discount:  l.Discount.StringFixed(2),
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	label := "Original"
	if v.Duplicate {
		label = "Duplicate"
	}
	return receiptResponse{
		ReceiptNumber: v.ReceiptNumber,
		OrderNumber:   v.OrderNumber,
		Type:          v.Type,
		PaymentMethod: v.PaymentMethod,
		PaidAt:        v.PaidAt,
		TableNumber:   v.TableNumber,
		Lines:         lines,
		Subtotal:      v.Subtotal.StringFixed(2),
		Discount:      v.Discount.StringFixed(2),
		Tax:           v.Tax.StringFixed(2),
		ServiceCharge: v.ServiceCharge.StringFixed(2),
		Total:         v.Total.StringFixed(2),
		ReprintCount:  v.ReprintCount,
		Label:         label,
	}
}

// --- Handlers ---

// Get renders the receipt for a paid order.
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.orders.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	v, err := receipt.Render(o, h.tables)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(v))
}

// Reprint bumps the counter and renders the duplicate-stamped copy.
func (h *ReceiptHandler) Reprint(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	o, err := h.reprinter.Reprint(actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	v, err := receipt.Render(o, h.tables)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(v))
}
