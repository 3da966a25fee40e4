package kitchen

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
)

var clock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newRouter(st *store.Store) *Router {
	return NewRouterAt(st, 10*time.Minute, func() time.Time { return clock })
}

func item(name, station string) domain.OrderItem {
	return domain.OrderItem{
		ID:         uuid.New(),
		MenuItemID: uuid.New(),
		Name:       name,
		Quantity:   1,
		UnitPrice:  decimal.RequireFromString("10.00"),
		Status:     enum.OrderItemStatusPending,
		Station:    station,
	}
}

func order(number, status string, age time.Duration, items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		Status:      status,
		Type:        enum.OrderTypeDineIn,
		Items:       items,
		CreatedAt:   clock.Add(-age),
	}
}

func TestTicketsFilterByStatus(t *testing.T) {
	st := store.New()
	st.PutOrder(order("ORD-1001", enum.OrderStatusDraft, time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-1002", enum.OrderStatusPending, time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-1003", enum.OrderStatusPreparing, time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-1004", enum.OrderStatusReady, time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-1005", enum.OrderStatusPaid, time.Minute, item("Soup", enum.StationHot)))

	tickets := newRouter(st).Tickets(enum.StationAll)
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2 (PENDING and PREPARING only)", len(tickets))
	}
}

func TestTicketsStationFilter(t *testing.T) {
	st := store.New()
	st.PutOrder(order("ORD-2001", enum.OrderStatusPending,
		time.Minute,
		item("Steak", enum.StationHot),
		item("Lemonade", enum.StationBar),
	))
	st.PutOrder(order("ORD-2002", enum.OrderStatusPending, time.Minute, item("Tiramisu", enum.StationBakery)))

	r := newRouter(st)

	hot := r.Tickets(enum.StationHot)
	if len(hot) != 1 {
		t.Fatalf("hot tickets = %d, want 1", len(hot))
	}
	if len(hot[0].Items) != 1 || hot[0].Items[0].Name != "Steak" {
		t.Errorf("hot ticket items = %+v, want just Steak", hot[0].Items)
	}

	// Orders with no items for the station are dropped entirely
	cold := r.Tickets(enum.StationCold)
	if len(cold) != 0 {
		t.Errorf("cold tickets = %d, want 0", len(cold))
	}

	// The aggregate view keeps every item
	all := r.Tickets(enum.StationAll)
	if len(all) != 2 {
		t.Fatalf("all tickets = %d, want 2", len(all))
	}
	if len(all[0].Items)+len(all[1].Items) != 3 {
		t.Error("aggregate view must not drop items")
	}
}

func TestTicketsOldestFirst(t *testing.T) {
	st := store.New()
	st.PutOrder(order("ORD-3002", enum.OrderStatusPending, 5*time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-3001", enum.OrderStatusPending, 20*time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-3003", enum.OrderStatusPending, time.Minute, item("Soup", enum.StationHot)))

	tickets := newRouter(st).Tickets(enum.StationHot)
	want := []string{"ORD-3001", "ORD-3002", "ORD-3003"}
	for i, ticket := range tickets {
		if ticket.OrderNumber != want[i] {
			t.Errorf("tickets[%d] = %s, want %s", i, ticket.OrderNumber, want[i])
		}
	}
}

func TestTicketsDelayFlag(t *testing.T) {
	st := store.New()
	st.PutOrder(order("ORD-4001", enum.OrderStatusPending, 11*time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-4002", enum.OrderStatusPending, 10*time.Minute, item("Soup", enum.StationHot)))
	st.PutOrder(order("ORD-4003", enum.OrderStatusPending, 9*time.Minute, item("Soup", enum.StationHot)))

	tickets := newRouter(st).Tickets(enum.StationHot)
	if len(tickets) != 3 {
		t.Fatalf("tickets = %d, want 3", len(tickets))
	}

	if !tickets[0].Delayed {
		t.Error("11 minute ticket must be flagged delayed")
	}
	// Exactly at threshold is not delayed
	if tickets[1].Delayed {
		t.Error("10 minute ticket must not be flagged delayed")
	}
	if tickets[2].Delayed {
		t.Error("9 minute ticket must not be flagged delayed")
	}

	if tickets[0].ElapsedMin != 11 {
		t.Errorf("elapsed = %d, want 11", tickets[0].ElapsedMin)
	}
}

func TestTicketsResolveTableNumber(t *testing.T) {
	st := store.New()
	table := domain.Table{ID: uuid.New(), Number: 7, Capacity: 4, Status: enum.TableStatusOccupied}
	st.PutTable(table)

	o := order("ORD-5001", enum.OrderStatusPending, 2*time.Minute, item("Soup", enum.StationHot))
	tid := table.ID
	o.TableID = &tid
	st.PutOrder(o)
	st.PutOrder(order("ORD-5002", enum.OrderStatusPending, time.Minute, item("Soup", enum.StationHot)))

	tickets := newRouter(st).Tickets(enum.StationHot)
	if tickets[0].TableNumber == nil || *tickets[0].TableNumber != 7 {
		t.Errorf("table number = %v, want 7", tickets[0].TableNumber)
	}
	// Takeaway tickets carry no table
	if tickets[1].TableNumber != nil {
		t.Errorf("table number = %v, want nil", tickets[1].TableNumber)
	}
}
