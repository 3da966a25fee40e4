// Package store holds the terminal's mutable collections: the menu catalog,
// the floor plan, the order book, the staff roster, and the receipt sequence.
// State is process-lifetime only; there is deliberately no database behind it.
//
// Each accessor is atomic under the store's RWMutex. Multi-step
// read-modify-write cycles are serialized one level up, in the services.
package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	users      []domain.User
	categories []domain.Category
	menu       map[uuid.UUID]domain.MenuItem
	menuOrder  []uuid.UUID
	tables     map[uuid.UUID]domain.Table
	orders     map[uuid.UUID]*domain.Order
	receiptSeq int
}

func New() *Store {
	return &Store{
		menu:   make(map[uuid.UUID]domain.MenuItem),
		tables: make(map[uuid.UUID]domain.Table),
		orders: make(map[uuid.UUID]*domain.Order),
	}
}

// --- Users ---

func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
}

func (s *Store) ListUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// --- Categories ---

func (s *Store) AddCategory(c domain.Category) {
	s.mu.Lock()
	s.categories = append(s.categories, c)
	s.mu.Unlock()
}

func (s *Store) ListCategories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

// --- Menu catalog ---

func (s *Store) PutMenuItem(m domain.MenuItem) {
	s.mu.Lock()
	if _, exists := s.menu[m.ID]; !exists {
		s.menuOrder = append(s.menuOrder, m.ID)
	}
	s.menu[m.ID] = m
	s.mu.Unlock()
}

func (s *Store) GetMenuItem(id uuid.UUID) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.menu[id]
	return m, ok
}

func (s *Store) DeleteMenuItem(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[id]; !ok {
		return false
	}
	delete(s.menu, id)
	for i, mid := range s.menuOrder {
		if mid == id {
			s.menuOrder = append(s.menuOrder[:i], s.menuOrder[i+1:]...)
			break
		}
	}
	return true
}

// ListMenuItems returns catalog entries in insertion order.
func (s *Store) ListMenuItems() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MenuItem, 0, len(s.menuOrder))
	for _, id := range s.menuOrder {
		out = append(out, s.menu[id])
	}
	return out
}

// --- Tables ---

func (s *Store) PutTable(t domain.Table) {
	s.mu.Lock()
	s.tables[t.ID] = t
	s.mu.Unlock()
}

func (s *Store) GetTable(id uuid.UUID) (domain.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}

func (s *Store) ListTables() []domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// --- Orders ---

// PutOrder stores a deep copy so later caller mutations can't leak in.
func (s *Store) PutOrder(o *domain.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o.Clone()
	s.mu.Unlock()
}

// GetOrder returns a deep copy of the order.
func (s *Store) GetOrder(id uuid.UUID) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// ListOrders returns copies of all orders, oldest first.
func (s *Store) ListOrders() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveOrderForTable finds the single non-PAID, non-VOID order referencing
// the table, if any.
func (s *Store) ActiveOrderForTable(tableID uuid.UUID) (*domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.TableID != nil && *o.TableID == tableID && o.Active() {
			return o.Clone(), true
		}
	}
	return nil, false
}

// OrderNumberInUse reports whether an active order already carries the number.
func (s *Store) OrderNumberInUse(number string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.Active() && o.OrderNumber == number {
			return true
		}
	}
	return false
}

// --- Receipt sequence ---

// NextReceiptSeq increments and returns the process-wide receipt counter.
// It is incremented exactly once per successful payment and never reset.
func (s *Store) NextReceiptSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiptSeq++
	return s.receiptSeq
}
