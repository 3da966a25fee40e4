// Package domain holds the core value types shared across the terminal.
// All state lives for the lifetime of the process; there is no database.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies the logged-in staff member performing an action.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// User is a staff roster entry. PINs are bcrypt-hashed; the plaintext PIN
// stands in for an external auth provider.
type User struct {
	ID        uuid.UUID
	Name      string
	Role      string
	HashedPIN string
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Category groups menu items for display.
type Category struct {
	ID   uuid.UUID
	Name string
	Icon string
}

// Modifier is an immutable price adjustment. Modifiers attached to order
// items are copies, never references into the menu catalog.
type Modifier struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItem is a catalog entry. Availability toggles independently of edits.
type MenuItem struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	BasePrice   decimal.Decimal
	Modifiers   []Modifier
	ImageURL    string
	Station     string
	IsAvailable bool
}

// OrderItem is one line of an order. UnitPrice is base price plus the sum of
// attached modifier prices; it is never edited directly.
type OrderItem struct {
	ID            uuid.UUID
	MenuItemID    uuid.UUID
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	Modifiers     []Modifier
	Notes         string
	Status        string
	Station       string
	DiscountValue decimal.Decimal
	DiscountType  string
}

// Order is the aggregate root of the lifecycle state machine. Once Status is
// PAID everything except ReprintCount is frozen.
type Order struct {
	ID            uuid.UUID
	TableID       *uuid.UUID
	OrderNumber   string
	ReceiptNumber string
	ReprintCount  int
	Status        string
	Type          string
	Items         []OrderItem
	Subtotal      decimal.Decimal
	DiscountValue decimal.Decimal
	DiscountType  string
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
	CreatedAt     time.Time
	PaidAt        *time.Time
	PaymentMethod string
}

// Active reports whether the order still occupies its table.
func (o *Order) Active() bool {
	return o.Status != "PAID" && o.Status != "VOID"
}

// Clone deep-copies the order so readers never observe in-place mutation.
func (o *Order) Clone() *Order {
	c := *o
	if o.TableID != nil {
		tid := *o.TableID
		c.TableID = &tid
	}
	if o.PaidAt != nil {
		t := *o.PaidAt
		c.PaidAt = &t
	}
	c.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		ci := it
		ci.Modifiers = append([]Modifier(nil), it.Modifiers...)
		c.Items[i] = ci
	}
	return &c
}

// Table is one seat group on the floor plan.
type Table struct {
	ID       uuid.UUID
	Number   int
	Capacity int
	Status   string
}

// AuditEntry records a privileged or state-changing action. The log is
// append-only; entries are never mutated or deleted.
type AuditEntry struct {
	ID        uuid.UUID
	Timestamp time.Time
	UserID    uuid.UUID
	UserName  string
	Action    string
	Details   string
	Severity  string
}
