package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/insights"
)

const revenueWindowDays = 7

// ReportsStore defines the order book reads needed by report handlers.
// Satisfied by *store.Store.
type ReportsStore interface {
	ListOrders() []*domain.Order
	ListMenuItems() []domain.MenuItem
	ListCategories() []domain.Category
}

// AuditReader exposes the audit trail for the reports surface.
// Satisfied by *audit.Log.
type AuditReader interface {
	List() []domain.AuditEntry
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store      ReportsStore
	audit      AuditReader
	summarizer insights.Summarizer
	now        func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore, audit AuditReader, summarizer insights.Summarizer) *ReportsHandler {
	return &ReportsHandler{store: store, audit: audit, summarizer: summarizer, now: time.Now}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/revenue", h.Revenue)
	r.Get("/reports/category-mix", h.CategoryMix)
	r.Get("/reports/audit", h.AuditTrail)
	r.Get("/reports/insights", h.Insights)
}

// --- Response types ---

type dailyRevenueResponse struct {
	Date       string `json:"date"`
	OrderCount int    `json:"order_count"`
	Revenue    string `json:"revenue"`
}

type categoryMixResponse struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Revenue  string `json:"revenue"`
}

type auditEntryResponse struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Severity  string    `json:"severity"`
}

type insightsResponse struct {
	Summary string `json:"summary"`
}

// --- Handlers ---

// Revenue aggregates paid orders per day over the trailing week.
func (h *ReportsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	cutoff := h.now().AddDate(0, 0, -revenueWindowDays)

	type bucket struct {
		count   int
		revenue decimal.Decimal
	}
	days := map[string]*bucket{}
	for _, o := range h.store.ListOrders() {
		if o.Status != enum.OrderStatusPaid || o.PaidAt == nil || o.PaidAt.Before(cutoff) {
			continue
		}
		day := o.PaidAt.Format("2006-01-02")
		b, ok := days[day]
		if !ok {
			b = &bucket{revenue: decimal.Zero}
			days[day] = b
		}
		b.count++
		b.revenue = b.revenue.Add(o.Total)
	}

	out := make([]dailyRevenueResponse, 0, len(days))
	for day, b := range days {
		out = append(out, dailyRevenueResponse{
			Date:       day,
			OrderCount: b.count,
			Revenue:    b.revenue.StringFixed(2),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	writeJSON(w, http.StatusOK, out)
}

// CategoryMix breaks paid order volume down by menu category.
func (h *ReportsHandler) CategoryMix(w http.ResponseWriter, r *http.Request) {
	categoryName := map[string]string{}
	for _, c := range h.store.ListCategories() {
		categoryName[c.ID.String()] = c.Name
	}
	itemCategory := map[string]string{}
	for _, m := range h.store.ListMenuItems() {
		itemCategory[m.ID.String()] = categoryName[m.CategoryID.String()]
	}

	type bucket struct {
		quantity int
		revenue  decimal.Decimal
	}
	mix := map[string]*bucket{}
	for _, o := range h.store.ListOrders() {
		if o.Status != enum.OrderStatusPaid {
			continue
		}
		for _, it := range o.Items {
			name := itemCategory[it.MenuItemID.String()]
			if name == "" {
				name = "Uncategorized"
			}
			b, ok := mix[name]
			if !ok {
				b = &bucket{revenue: decimal.Zero}
				mix[name] = b
			}
			b.quantity += it.Quantity
			b.revenue = b.revenue.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	out := make([]categoryMixResponse, 0, len(mix))
	for name, b := range mix {
		out = append(out, categoryMixResponse{
			Category: name,
			Quantity: b.quantity,
			Revenue:  b.revenue.StringFixed(2),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	writeJSON(w, http.StatusOK, out)
}

// AuditTrail returns the audit log, newest first.
func (h *ReportsHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	entries := h.audit.List()
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:        e.ID.String(),
			Timestamp: e.Timestamp,
			UserName:  e.UserName,
			Action:    e.Action,
			Details:   e.Details,
			Severity:  e.Severity,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Insights returns the advisory AI summary of recent paid orders. Failures
// degrade to a fixed message rather than an error status.
func (h *ReportsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	var paid []*domain.Order
	for _, o := range h.store.ListOrders() {
		if o.Status == enum.OrderStatusPaid {
			paid = append(paid, o)
		}
	}
	summary := h.summarizer.Summarize(r.Context(), paid)
	writeJSON(w, http.StatusOK, insightsResponse{Summary: summary})
}
