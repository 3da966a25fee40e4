package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/config"
	"github.com/mehrabrahat/ITZENBD-POS/internal/insights"
	"github.com/mehrabrahat/ITZENBD-POS/internal/kitchen"
	"github.com/mehrabrahat/ITZENBD-POS/internal/pricing"
	"github.com/mehrabrahat/ITZENBD-POS/internal/router"
	"github.com/mehrabrahat/ITZENBD-POS/internal/seed"
	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
	"github.com/mehrabrahat/ITZENBD-POS/internal/ws"
)

// newStack wires the seeded store through every service and the full router,
// the same way cmd/server does.
func newStack(t *testing.T) chi.Router {
	t.Helper()

	cfg := &config.Config{
		Port:              "0",
		JWTSecret:         "integration-secret",
		TaxRate:           0.10,
		ServiceChargeRate: 0.05,
		KDSDelayMinutes:   10,
	}

	st := store.New()
	if err := seed.Load(st); err != nil {
		t.Fatalf("seed: %v", err)
	}

	auditLog := audit.NewLog()
	authz := service.NewAuthorizer(st, auditLog)
	rates := pricing.NewRates(cfg.TaxRate, cfg.ServiceChargeRate)
	orders := service.NewOrderService(st, auditLog, authz, rates)
	menu := service.NewMenuService(st, auditLog, authz)
	kds := kitchen.NewRouter(st, time.Duration(cfg.KDSDelayMinutes)*time.Minute)

	hub := ws.NewHub()
	go hub.Run()

	return router.New(cfg, router.Deps{
		Store:      st,
		Audit:      auditLog,
		Orders:     orders,
		Menu:       menu,
		Authorizer: authz,
		Kitchen:    kds,
		Summarizer: insights.NewClient("http://127.0.0.1:1", "test-model", ""),
		Hub:        hub,
	})
}

func request(t *testing.T, r chi.Router, method, path, token string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s = %d, want %d: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}

	out := map[string]interface{}{}
	if len(rec.Body.Bytes()) > 0 && rec.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal %s %s: %v", method, path, err)
		}
	}
	return out
}

func requestList(t *testing.T, r chi.Router, path, token string) []map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d: %s", path, rec.Code, rec.Body.String())
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal GET %s: %v", path, err)
	}
	return out
}

func login(t *testing.T, r chi.Router, pin string) string {
	t.Helper()
	resp := request(t, r, http.MethodPost, "/auth/login", "", map[string]string{"pin": pin}, http.StatusOK)
	token, _ := resp["access_token"].(string)
	if token == "" {
		t.Fatalf("login with pin %s returned no token", pin)
	}
	return token
}

// TestIntegrationFlow walks the full service lifecycle through the router:
// login, open a table, build an order, kitchen prep, payment, receipts and
// the manager override queue.
func TestIntegrationFlow(t *testing.T) {
	r := newStack(t)

	cashier := login(t, r, "3333")
	manager := login(t, r, "2222")
	chef := login(t, r, "4444")

	// Open an order on the first seeded table
	tables := requestList(t, r, "/tables", cashier)
	if len(tables) != 8 {
		t.Fatalf("tables = %d, want 8 from seed data", len(tables))
	}
	tableID := tables[0]["id"].(string)

	order := request(t, r, http.MethodPost, "/tables/"+tableID+"/order", cashier, nil, http.StatusOK)
	orderID := order["id"].(string)
	if order["status"] != "DRAFT" {
		t.Fatalf("new order status = %v, want DRAFT", order["status"])
	}

	// Find the steak on the seeded menu and add it twice; the lines merge
	var steakID string
	for _, m := range requestList(t, r, "/menu", cashier) {
		if m["name"] == "Ribeye Steak" {
			steakID = m["id"].(string)
		}
	}
	if steakID == "" {
		t.Fatal("seeded menu is missing Ribeye Steak")
	}
	request(t, r, http.MethodPost, "/orders/"+orderID+"/items", cashier,
		map[string]string{"menu_item_id": steakID}, http.StatusOK)
	order = request(t, r, http.MethodPost, "/orders/"+orderID+"/items", cashier,
		map[string]string{"menu_item_id": steakID}, http.StatusOK)

	items := order["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 merged line", len(items))
	}
	line := items[0].(map[string]interface{})
	itemID := line["id"].(string)
	if line["quantity"].(float64) != 2 {
		t.Fatalf("quantity = %v, want 2", line["quantity"])
	}

	// Send to kitchen
	order = request(t, r, http.MethodPost, "/orders/"+orderID+"/submit", cashier, nil, http.StatusOK)
	if order["status"] != "PENDING" {
		t.Fatalf("submitted status = %v, want PENDING", order["status"])
	}

	// Cashiers cannot see the kitchen display
	req := httptest.NewRequest(http.MethodGet, "/kitchen/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+cashier)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier kitchen access = %d, want 403", rec.Code)
	}

	tickets := requestList(t, r, "/kitchen/tickets?station=Hot", chef)
	if len(tickets) != 1 {
		t.Fatalf("hot tickets = %d, want 1", len(tickets))
	}

	// Reducing a sent item needs a manager; the request parks
	parked := request(t, r, http.MethodPatch,
		"/orders/"+orderID+"/items/"+itemID+"/quantity", cashier,
		map[string]int{"delta": -1}, http.StatusAccepted)
	pendingID, _ := parked["pending_id"].(string)
	if pendingID == "" {
		t.Fatalf("parked response = %+v, want pending_id", parked)
	}

	overrides := requestList(t, r, "/overrides", manager)
	if len(overrides) != 1 {
		t.Fatalf("pending overrides = %d, want 1", len(overrides))
	}
	request(t, r, http.MethodPost, "/overrides/"+pendingID+"/approve", manager,
		map[string]string{"pin": "2222"}, http.StatusOK)

	order = request(t, r, http.MethodGet, "/orders/"+orderID, cashier, nil, http.StatusOK)
	line = order["items"].([]interface{})[0].(map[string]interface{})
	if line["quantity"].(float64) != 1 {
		t.Fatalf("quantity after approved reduction = %v, want 1", line["quantity"])
	}

	// Kitchen works the ticket
	request(t, r, http.MethodPost, "/kitchen/orders/"+orderID+"/start", chef, nil, http.StatusOK)
	request(t, r, http.MethodPost, "/kitchen/orders/"+orderID+"/ready", chef, nil, http.StatusOK)

	// Receipt before payment is refused
	reqRec := httptest.NewRequest(http.MethodGet, "/orders/"+orderID+"/receipt", nil)
	reqRec.Header.Set("Authorization", "Bearer "+cashier)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, reqRec)
	if rec.Code != http.StatusConflict {
		t.Fatalf("receipt before payment = %d, want 409", rec.Code)
	}

	// Settle the bill: 35.00 + 10% tax + 5% service charge
	order = request(t, r, http.MethodPost, "/orders/"+orderID+"/pay", cashier,
		map[string]string{"method": "CASH"}, http.StatusOK)
	if order["status"] != "PAID" {
		t.Fatalf("paid status = %v", order["status"])
	}
	if order["total"] != "40.25" {
		t.Fatalf("total = %v, want 40.25", order["total"])
	}

	receipt := request(t, r, http.MethodGet, "/orders/"+orderID+"/receipt", cashier, nil, http.StatusOK)
	if receipt["label"] != "Original" {
		t.Fatalf("receipt label = %v, want Original", receipt["label"])
	}

	receipt = request(t, r, http.MethodPost, "/orders/"+orderID+"/receipt/reprint", cashier, nil, http.StatusOK)
	if receipt["label"] != "Duplicate" {
		t.Fatalf("reprint label = %v, want Duplicate", receipt["label"])
	}

	// The paid order is locked for good
	req = httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/items", bytes.NewReader([]byte(`{"menu_item_id":"`+steakID+`"}`)))
	req.Header.Set("Authorization", "Bearer "+cashier)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("edit after payment = %d, want 409", rec.Code)
	}

	// The table frees up after payment
	tables = requestList(t, r, "/tables", cashier)
	for _, tb := range tables {
		if tb["id"] == tableID && tb["status"] != "AVAILABLE" {
			t.Fatalf("table status after payment = %v, want AVAILABLE", tb["status"])
		}
	}

	// The audit trail captured the override and the payment
	entries := requestList(t, r, "/reports/audit", manager)
	actions := map[string]bool{}
	for _, e := range entries {
		actions[e["action"].(string)] = true
	}
	for _, want := range []string{"STAFF_LOGIN", "SUBMIT_ORDER", "MANAGER_OVERRIDE", "PAYMENT_COLLECTED", "RECEIPT_REPRINTED"} {
		if !actions[want] {
			t.Errorf("audit trail missing %s: have %v", want, actions)
		}
	}

	// Reports are manager-only
	req = httptest.NewRequest(http.MethodGet, "/reports/revenue", nil)
	req.Header.Set("Authorization", "Bearer "+cashier)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier reports access = %d, want 403", rec.Code)
	}
	revenue := requestList(t, r, "/reports/revenue", manager)
	if len(revenue) != 1 || revenue[0]["revenue"] != "40.25" {
		t.Fatalf("revenue = %+v, want one day at 40.25", revenue)
	}
}
