package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
)

func newMenuFixture(t *testing.T) (*store.Store, *audit.Log, *Authorizer, *MenuService) {
	t.Helper()
	st := store.New()
	for _, u := range rosterWithManager(t, "2222") {
		st.AddUser(u)
	}
	log := audit.NewLog()
	authz := NewAuthorizer(st, log)
	svc := NewMenuService(st, log, authz)
	return st, log, authz, svc
}

func validInput() MenuItemInput {
	return MenuItemInput{
		CategoryID: uuid.New(),
		Name:       "Calamari",
		BasePrice:  decimal.RequireFromString("12.00"),
		Station:    enum.StationHot,
	}
}

func TestMenuCreateByManager(t *testing.T) {
	_, log, _, svc := newMenuFixture(t)

	item, pending, err := svc.Create(manager, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pending != nil {
		t.Fatal("manager create must not be parked")
	}
	if item == nil || item.Name != "Calamari" {
		t.Fatalf("item = %+v, want Calamari", item)
	}
	if !item.IsAvailable {
		t.Error("new items start available")
	}
	if got := len(svc.List()); got != 1 {
		t.Errorf("catalog size = %d, want 1", got)
	}
	if e := log.List()[0]; e.Action != enum.ActionMenuModified {
		t.Errorf("audit action = %s, want MENU_MODIFIED", e.Action)
	}
}

func TestMenuCreateByCashierIsParked(t *testing.T) {
	_, _, authz, svc := newMenuFixture(t)

	item, pending, err := svc.Create(cashier, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item != nil {
		t.Error("parked create must not return the item yet")
	}
	if pending == nil {
		t.Fatal("cashier create must be parked")
	}
	if got := len(svc.List()); got != 0 {
		t.Errorf("catalog size = %d, want 0 before approval", got)
	}

	if err := authz.Approve(pending.ID, "2222"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	items := svc.List()
	if len(items) != 1 {
		t.Fatalf("catalog size = %d, want 1 after approval", len(items))
	}
	if items[0].Name != "Calamari" {
		t.Errorf("name = %s, want Calamari", items[0].Name)
	}
}

func TestMenuUpdateKeepsAvailability(t *testing.T) {
	st, _, _, svc := newMenuFixture(t)

	item, _, err := svc.Create(manager, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.ToggleAvailability(manager, item.ID); err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}

	input := validInput()
	input.Name = "Crispy Calamari"
	updated, pending, err := svc.Update(manager, item.ID, input)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if pending != nil {
		t.Fatal("manager update must not be parked")
	}
	if updated.IsAvailable {
		t.Error("update must keep the toggled-off availability flag")
	}
	stored, _ := st.GetMenuItem(item.ID)
	if stored.Name != "Crispy Calamari" {
		t.Errorf("name = %s, want Crispy Calamari", stored.Name)
	}
}

func TestMenuDeleteFlow(t *testing.T) {
	_, _, authz, svc := newMenuFixture(t)

	item, _, err := svc.Create(manager, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pending, err := svc.Delete(cashier, item.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if pending == nil {
		t.Fatal("cashier delete must be parked")
	}
	if got := len(svc.List()); got != 1 {
		t.Errorf("catalog size = %d, want 1 before approval", got)
	}

	if err := authz.Approve(pending.ID, "2222"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got := len(svc.List()); got != 0 {
		t.Errorf("catalog size = %d, want 0 after approval", got)
	}
}

func TestMenuDeleteUnknown(t *testing.T) {
	_, _, _, svc := newMenuFixture(t)
	if _, err := svc.Delete(manager, uuid.New()); !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("err = %v, want ErrCatalogNotFound", err)
	}
}

func TestMenuValidation(t *testing.T) {
	_, _, _, svc := newMenuFixture(t)

	input := validInput()
	input.Name = ""
	if _, _, err := svc.Create(manager, input); !errors.Is(err, ErrNameRequired) {
		t.Errorf("empty name err = %v, want ErrNameRequired", err)
	}

	input = validInput()
	input.BasePrice = decimal.RequireFromString("-1")
	if _, _, err := svc.Create(manager, input); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price err = %v, want ErrInvalidPrice", err)
	}

	input = validInput()
	input.Station = "Microwave"
	if _, _, err := svc.Create(manager, input); !errors.Is(err, ErrInvalidStation) {
		t.Errorf("bad station err = %v, want ErrInvalidStation", err)
	}

	input = validInput()
	input.Modifiers = []domain.Modifier{{ID: uuid.New(), Name: "Free", Price: decimal.RequireFromString("-0.50")}}
	if _, _, err := svc.Create(manager, input); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative modifier err = %v, want ErrInvalidPrice", err)
	}
}

func TestToggleAvailabilityAudits(t *testing.T) {
	_, log, _, svc := newMenuFixture(t)

	item, _, err := svc.Create(manager, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Cashiers may toggle stock without an override
	m, err := svc.ToggleAvailability(cashier, item.ID)
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if m.IsAvailable {
		t.Error("toggle should flip availability off")
	}
	e := log.List()[0]
	if e.Action != enum.ActionStockUpdate {
		t.Errorf("audit action = %s, want STOCK_UPDATE", e.Action)
	}

	m, err = svc.ToggleAvailability(cashier, item.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !m.IsAvailable {
		t.Error("second toggle should flip availability back on")
	}
}
