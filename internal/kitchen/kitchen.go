// Package kitchen derives per-station ticket views from active orders.
// The projection is read-only; status advances go through the order service.
package kitchen

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
)

// Ticket is the kitchen-facing view of one order, filtered by station.
// Elapsed and Delayed are derived at read time from the stored creation
// timestamp; they are never persisted.
type Ticket struct {
	OrderID     uuid.UUID
	OrderNumber string
	Type        string
	Status      string
	TableNumber *int
	Items       []domain.OrderItem
	CreatedAt   time.Time
	ElapsedMin  int
	Delayed     bool
}

// Router projects the order book into station queues.
type Router struct {
	store          *store.Store
	delayThreshold time.Duration
	now            func() time.Time
}

func NewRouter(st *store.Store, delayThreshold time.Duration) *Router {
	return &Router{store: st, delayThreshold: delayThreshold, now: time.Now}
}

// NewRouterAt builds a Router with a fixed clock, for tests.
func NewRouterAt(st *store.Store, delayThreshold time.Duration, now func() time.Time) *Router {
	return &Router{store: st, delayThreshold: delayThreshold, now: now}
}

// Tickets returns one ticket per PENDING/PREPARING order holding items for
// the given station ("All" keeps everything). Orders with no matching items
// are dropped. Oldest first: the kitchen works a FIFO queue.
func (r *Router) Tickets(station string) []Ticket {
	now := r.now()
	var out []Ticket

	for _, o := range r.store.ListOrders() {
		if o.Status != enum.OrderStatusPending && o.Status != enum.OrderStatusPreparing {
			continue
		}

		items := o.Items
		if station != "" && station != enum.StationAll {
			items = nil
			for _, it := range o.Items {
				if it.Station == station {
					items = append(items, it)
				}
			}
		}
		if len(items) == 0 {
			continue
		}

		elapsed := now.Sub(o.CreatedAt)
		t := Ticket{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			Type:        o.Type,
			Status:      o.Status,
			Items:       items,
			CreatedAt:   o.CreatedAt,
			ElapsedMin:  int(elapsed / time.Minute),
			Delayed:     elapsed > r.delayThreshold,
		}
		if o.TableID != nil {
			if table, ok := r.store.GetTable(*o.TableID); ok {
				n := table.Number
				t.TableNumber = &n
			}
		}
		out = append(out, t)
	}

	// ListOrders is already oldest-first.
	return out
}
