package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
	"github.com/mehrabrahat/ITZENBD-POS/internal/pricing"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderLocked       = errors.New("order is locked")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrTableNotFound     = errors.New("table not found")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrItemUnavailable   = errors.New("menu item is not available")
	ErrItemNotFound      = errors.New("order item not found")
	ErrModifierNotFound  = errors.New("modifier not found")
	ErrInvalidDiscount   = errors.New("invalid discount type")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrOrderNotPaid      = errors.New("order is not paid")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// itemStatusRank orders preparation states; transitions only move forward.
var itemStatusRank = map[string]int{
	enum.OrderItemStatusPending:   0,
	enum.OrderItemStatusPreparing: 1,
	enum.OrderItemStatusReady:     2,
	enum.OrderItemStatusServed:    3,
}

// OrderService owns the order lifecycle state machine and the item registry.
// Its mutex serializes every read-modify-write cycle, which is what keeps the
// single-active-order-per-table and paid-order-immutability invariants intact
// under concurrent HTTP clients.
type OrderService struct {
	mu    sync.Mutex
	store *store.Store
	audit *audit.Log
	authz *Authorizer
	rates pricing.Rates

	now     func() time.Time
	randInt func(n int) int
}

func NewOrderService(st *store.Store, auditLog *audit.Log, authz *Authorizer, rates pricing.Rates) *OrderService {
	s := &OrderService{
		store:   st,
		audit:   auditLog,
		authz:   authz,
		rates:   rates,
		now:     time.Now,
		randInt: rand.Intn,
	}
	authz.RegisterExecutor(enum.ActionReduceSentItem, s.executeReduceSentItem)
	return s
}

// QuantityResult reports a quantity update: either the mutated order, or the
// pending override it was parked behind.
type QuantityResult struct {
	Order   *domain.Order
	Pending *PendingOverride
}

// --- Reads ---

func (s *OrderService) Get(id uuid.UUID) (*domain.Order, error) {
	o, ok := s.store.GetOrder(id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// List returns orders oldest first, optionally filtered by status.
func (s *OrderService) List(status string) []*domain.Order {
	orders := s.store.ListOrders()
	if status == "" {
		return orders
	}
	out := orders[:0]
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// --- Lifecycle ---

// OpenTable resumes the table's active order or creates a fresh draft linked
// to it. The table keeps its current status until the order is submitted.
func (s *OrderService) OpenTable(actor domain.Actor, tableID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.GetTable(tableID); !ok {
		return nil, ErrTableNotFound
	}
	if existing, ok := s.store.ActiveOrderForTable(tableID); ok {
		return existing, nil
	}

	tid := tableID
	o := &domain.Order{
		ID:            uuid.New(),
		TableID:       &tid,
		OrderNumber:   s.nextOrderNumber(),
		Status:        enum.OrderStatusDraft,
		Type:          enum.OrderTypeDineIn,
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: decimal.Zero,
		CreatedAt:     s.now(),
	}
	s.recompute(o)
	s.store.PutOrder(o)
	return o.Clone(), nil
}

// Submit sends the draft to the kitchen: every item is stamped PENDING and
// the linked table becomes occupied. This is the irreversible boundary after
// which quantity reductions require manager approval.
func (s *OrderService) Submit(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !o.Active() {
		return nil, ErrOrderLocked
	}
	if len(o.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	o.Status = enum.OrderStatusPending
	for i := range o.Items {
		o.Items[i].Status = enum.OrderItemStatusPending
	}
	s.store.PutOrder(o)

	if o.TableID != nil {
		if t, ok := s.store.GetTable(*o.TableID); ok {
			t.Status = enum.TableStatusOccupied
			s.store.PutTable(t)
		}
	}

	s.audit.Append(actor, enum.ActionSubmitOrder,
		fmt.Sprintf("Order %s sent to kitchen", o.OrderNumber), enum.SeverityLow)
	return o, nil
}

// Pay settles any active order with items. It assigns the paid timestamp and
// the next receipt number, frees the table, and freezes the order: from here
// on only the reprint counter may change.
func (s *OrderService) Pay(actor domain.Actor, orderID uuid.UUID, method string) (*domain.Order, error) {
	if !enum.ValidPaymentMethod(method) {
		return nil, ErrInvalidPayment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !o.Active() {
		return nil, ErrOrderLocked
	}
	if len(o.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	paidAt := s.now()
	seq := s.store.NextReceiptSeq()
	o.Status = enum.OrderStatusPaid
	o.PaidAt = &paidAt
	o.ReceiptNumber = fmt.Sprintf("RCPT-%s-%04d", paidAt.Format("20060102"), seq)
	o.ReprintCount = 0
	o.PaymentMethod = method
	s.store.PutOrder(o)

	s.freeTable(o)
	s.audit.Append(actor, enum.ActionPaymentCollected,
		fmt.Sprintf("Payment (%s) for %s finalized. Receipt: %s. Bill Locked.", method, o.OrderNumber, o.ReceiptNumber),
		enum.SeverityMedium)
	return o, nil
}

// Void cancels an order from any pre-PAID state and frees its table.
// Paid orders can never be voided.
func (s *OrderService) Void(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status == enum.OrderStatusPaid {
		return nil, ErrOrderLocked
	}
	if o.Status == enum.OrderStatusVoid {
		return o, nil
	}

	o.Status = enum.OrderStatusVoid
	s.store.PutOrder(o)
	s.freeTable(o)

	s.audit.Append(actor, enum.ActionOrderVoided,
		fmt.Sprintf("Order %s voided", o.OrderNumber), enum.SeverityMedium)
	return o, nil
}

// Reprint bumps the reprint counter on a paid order. This is the only
// mutation PAID orders accept.
func (s *OrderService) Reprint(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status != enum.OrderStatusPaid {
		return nil, ErrOrderNotPaid
	}

	o.ReprintCount++
	s.store.PutOrder(o)
	s.audit.Append(actor, enum.ActionReceiptReprinted,
		fmt.Sprintf("Receipt %s reprinted (Copy #%d)", o.ReceiptNumber, o.ReprintCount), enum.SeverityMedium)
	return o, nil
}

// --- Kitchen advances (order level) ---

// MarkReady completes a whole ticket: PENDING or PREPARING moves to READY,
// including items hidden by the station filter the kitchen happens to view.
func (s *OrderService) MarkReady(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	return s.advance(orderID, enum.OrderStatusReady, enum.OrderStatusPending, enum.OrderStatusPreparing)
}

// StartPreparing moves a freshly submitted order onto the line.
func (s *OrderService) StartPreparing(actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	return s.advance(orderID, enum.OrderStatusPreparing, enum.OrderStatusPending)
}

func (s *OrderService) advance(orderID uuid.UUID, to string, from ...string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	allowed := false
	for _, f := range from {
		if o.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}
	o.Status = to
	s.store.PutOrder(o)
	return o, nil
}

// SetItemStatus advances one item's preparation state. Transitions are
// monotonic forward only.
func (s *OrderService) SetItemStatus(actor domain.Actor, orderID, itemID uuid.UUID, status string) (*domain.Order, error) {
	rank, ok := itemStatusRank[status]
	if !ok {
		return nil, ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status == enum.OrderStatusPaid {
		return nil, ErrOrderLocked
	}
	idx := findItem(o, itemID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if rank <= itemStatusRank[o.Items[idx].Status] {
		return nil, ErrInvalidTransition
	}
	o.Items[idx].Status = status
	s.store.PutOrder(o)
	return o, nil
}

// --- Item registry ---

// AddItem appends a menu item to the order, merging into an existing bare
// line (no modifiers, no discount) for the same menu item.
func (s *OrderService) AddItem(actor domain.Actor, orderID, menuItemID uuid.UUID) (*domain.Order, error) {
	mi, ok := s.store.GetMenuItem(menuItemID)
	if !ok {
		return nil, ErrMenuItemNotFound
	}
	if !mi.IsAvailable {
		return nil, ErrItemUnavailable
	}

	return s.mutate(orderID, func(o *domain.Order) error {
		for i := range o.Items {
			it := &o.Items[i]
			if it.MenuItemID == mi.ID && len(it.Modifiers) == 0 && it.DiscountValue.IsZero() {
				it.Quantity++
				return nil
			}
		}
		o.Items = append(o.Items, domain.OrderItem{
			ID:            uuid.New(),
			MenuItemID:    mi.ID,
			Name:          mi.Name,
			Quantity:      1,
			UnitPrice:     mi.BasePrice,
			Status:        enum.OrderItemStatusPending,
			Station:       mi.Station,
			DiscountValue: decimal.Zero,
			DiscountType:  enum.DiscountTypePercentage,
		})
		return nil
	})
}

// ToggleModifier attaches or detaches a catalog modifier. The unit price is
// re-anchored to the catalog base price so repeated toggles never drift; if
// the catalog entry has since been deleted, the item's current stored price
// is the fallback anchor.
func (s *OrderService) ToggleModifier(actor domain.Actor, orderID, itemID, modifierID uuid.UUID) (*domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		it := &o.Items[idx]

		attached := -1
		for i, m := range it.Modifiers {
			if m.ID == modifierID {
				attached = i
				break
			}
		}

		catalog, haveCatalog := s.store.GetMenuItem(it.MenuItemID)

		if attached >= 0 {
			it.Modifiers = append(it.Modifiers[:attached], it.Modifiers[attached+1:]...)
		} else {
			var mod *domain.Modifier
			if haveCatalog {
				for _, m := range catalog.Modifiers {
					if m.ID == modifierID {
						mc := m
						mod = &mc
						break
					}
				}
			}
			if mod == nil {
				return ErrModifierNotFound
			}
			it.Modifiers = append(it.Modifiers, *mod)
		}

		base := it.UnitPrice
		if haveCatalog {
			base = catalog.BasePrice
		}
		it.UnitPrice = base
		for _, m := range it.Modifiers {
			it.UnitPrice = it.UnitPrice.Add(m.Price)
		}
		return nil
	})
}

// AddCustomModifier attaches an ad-hoc modifier with a fresh id. Custom
// modifiers are catalog-independent: the price is added directly rather than
// recomputed from the catalog.
func (s *OrderService) AddCustomModifier(actor domain.Actor, orderID, itemID uuid.UUID, name string, price decimal.Decimal) (*domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		it := &o.Items[idx]
		it.Modifiers = append(it.Modifiers, domain.Modifier{
			ID:    uuid.New(),
			Name:  name,
			Price: price,
		})
		it.UnitPrice = it.UnitPrice.Add(price)
		return nil
	})
}

// RemoveModifier detaches the modifier and backs its price out of the unit
// price. Removing an unknown modifier is a no-op.
func (s *OrderService) RemoveModifier(actor domain.Actor, orderID, itemID, modifierID uuid.UUID) (*domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		it := &o.Items[idx]
		for i, m := range it.Modifiers {
			if m.ID == modifierID {
				it.UnitPrice = it.UnitPrice.Sub(m.Price)
				it.Modifiers = append(it.Modifiers[:i], it.Modifiers[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// ApplyItemDiscount sets the item discount fields. Bounds are enforced at
// calculation time, not here.
func (s *OrderService) ApplyItemDiscount(actor domain.Actor, orderID, itemID uuid.UUID, value decimal.Decimal, discountType string) (*domain.Order, error) {
	if !enum.ValidDiscountType(discountType) {
		return nil, ErrInvalidDiscount
	}
	return s.mutate(orderID, func(o *domain.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		o.Items[idx].DiscountValue = value
		o.Items[idx].DiscountType = discountType
		return nil
	})
}

// SetOrderDiscount sets the order-level discount.
func (s *OrderService) SetOrderDiscount(actor domain.Actor, orderID uuid.UUID, value decimal.Decimal, discountType string) (*domain.Order, error) {
	if !enum.ValidDiscountType(discountType) {
		return nil, ErrInvalidDiscount
	}
	return s.mutate(orderID, func(o *domain.Order) error {
		o.DiscountValue = value
		o.DiscountType = discountType
		return nil
	})
}

// SetItemNotes replaces the kitchen note on one item.
func (s *OrderService) SetItemNotes(actor domain.Actor, orderID, itemID uuid.UUID, notes string) (*domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		o.Items[idx].Notes = notes
		return nil
	})
}

// UpdateQuantity applies a quantity delta, removing the item when it reaches
// zero. Reducing quantity on an order that has already left DRAFT silently
// shrinks kitchen-visible work, so that path runs through the permission
// gate as REDUCE_SENT_ITEM.
func (s *OrderService) UpdateQuantity(actor domain.Actor, orderID, itemID uuid.UUID, delta int) (*QuantityResult, error) {
	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status == enum.OrderStatusPaid {
		return nil, ErrOrderLocked
	}

	if delta < 0 && o.Status != enum.OrderStatusDraft {
		pending, err := s.authz.Request(actor, true, Command{
			Action:        enum.ActionReduceSentItem,
			OrderID:       orderID,
			ItemID:        itemID,
			QuantityDelta: delta,
		})
		if err != nil {
			return nil, err
		}
		if pending != nil {
			return &QuantityResult{Pending: pending}, nil
		}
		updated, err := s.Get(orderID)
		if err != nil {
			return nil, err
		}
		return &QuantityResult{Order: updated}, nil
	}

	updated, err := s.applyQuantity(orderID, itemID, delta)
	if err != nil {
		return nil, err
	}
	return &QuantityResult{Order: updated}, nil
}

func (s *OrderService) executeReduceSentItem(actor domain.Actor, cmd Command) error {
	_, err := s.applyQuantity(cmd.OrderID, cmd.ItemID, cmd.QuantityDelta)
	return err
}

func (s *OrderService) applyQuantity(orderID, itemID uuid.UUID, delta int) (*domain.Order, error) {
	return s.mutate(orderID, func(o *domain.Order) error {
		idx := findItem(o, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		q := o.Items[idx].Quantity + delta
		if q <= 0 {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			return nil
		}
		o.Items[idx].Quantity = q
		return nil
	})
}

// --- Internals ---

// mutate runs fn on the order under the service mutex, recomputes totals and
// publishes the new state atomically. PAID orders reject every mutation.
func (s *OrderService) mutate(orderID uuid.UUID, fn func(o *domain.Order) error) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.store.GetOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status == enum.OrderStatusPaid {
		return nil, ErrOrderLocked
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	s.recompute(o)
	s.store.PutOrder(o)
	return o, nil
}

// recompute rebuilds the monetary snapshot from scratch; totals are never
// patched incrementally.
func (s *OrderService) recompute(o *domain.Order) {
	t := pricing.Calculate(o.Items, o.DiscountValue, o.DiscountType, s.rates)
	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.ServiceCharge = t.ServiceCharge
	o.Total = t.Total
}

func (s *OrderService) freeTable(o *domain.Order) {
	if o.TableID == nil {
		return
	}
	if t, ok := s.store.GetTable(*o.TableID); ok {
		t.Status = enum.TableStatusAvailable
		s.store.PutTable(t)
	}
}

// nextOrderNumber draws a random 4-digit order number, retrying a few times
// if an active order already carries it. Collisions with settled history are
// tolerated.
func (s *OrderService) nextOrderNumber() string {
	var n string
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		n = fmt.Sprintf("ORD-%04d", 1000+s.randInt(9000))
		if !s.store.OrderNumberInUse(n) {
			return n
		}
	}
	return n
}

func findItem(o *domain.Order, itemID uuid.UUID) int {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
