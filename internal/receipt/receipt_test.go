package receipt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
)

type tableMap map[uuid.UUID]domain.Table

func (m tableMap) GetTable(id uuid.UUID) (domain.Table, bool) {
	t, ok := m[id]
	return t, ok
}

func paidOrder() *domain.Order {
	paidAt := time.Date(2025, 3, 1, 20, 15, 0, 0, time.UTC)
	return &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-1042",
		ReceiptNumber: "RCPT-20250301-0007",
		Status:        enum.OrderStatusPaid,
		Type:          enum.OrderTypeDineIn,
		PaymentMethod: enum.PaymentMethodCard,
		PaidAt:        &paidAt,
		Items: []domain.OrderItem{
			{
				ID:         uuid.New(),
				MenuItemID: uuid.New(),
				Name:       "Ribeye Steak",
				Quantity:   2,
				UnitPrice:  decimal.RequireFromString("35.00"),
				Status:     enum.OrderItemStatusServed,
				Station:    enum.StationHot,
			},
		},
		Subtotal:      decimal.RequireFromString("70.00"),
		DiscountValue: decimal.Zero,
		DiscountType:  enum.DiscountTypePercentage,
		Tax:           decimal.RequireFromString("7.00"),
		ServiceCharge: decimal.RequireFromString("3.50"),
		Total:         decimal.RequireFromString("80.50"),
	}
}

func TestRenderRequiresPaidOrder(t *testing.T) {
	o := paidOrder()
	o.Status = enum.OrderStatusPending
	o.PaidAt = nil
	if _, err := Render(o, nil); !errors.Is(err, ErrNotPaid) {
		t.Errorf("err = %v, want ErrNotPaid", err)
	}
}

func TestRenderOriginal(t *testing.T) {
	v, err := Render(paidOrder(), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if v.ReceiptNumber != "RCPT-20250301-0007" {
		t.Errorf("receipt number = %s", v.ReceiptNumber)
	}
	if v.Duplicate {
		t.Error("first print must be the original, not a duplicate")
	}
	if len(v.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(v.Lines))
	}
	if got := v.Lines[0].LineTotal.StringFixed(2); got != "70.00" {
		t.Errorf("line total = %s, want 70.00", got)
	}
	if got := v.Total.StringFixed(2); got != "80.50" {
		t.Errorf("total = %s, want 80.50", got)
	}
}

func TestRenderDuplicateAfterReprint(t *testing.T) {
	o := paidOrder()
	o.ReprintCount = 2
	v, err := Render(o, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !v.Duplicate {
		t.Error("reprinted receipt must be stamped duplicate")
	}
	if v.ReprintCount != 2 {
		t.Errorf("reprint count = %d, want 2", v.ReprintCount)
	}
}

func TestRenderResolvesTable(t *testing.T) {
	o := paidOrder()
	table := domain.Table{ID: uuid.New(), Number: 5}
	tid := table.ID
	o.TableID = &tid

	v, err := Render(o, tableMap{table.ID: table})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if v.TableNumber == nil || *v.TableNumber != 5 {
		t.Errorf("table number = %v, want 5", v.TableNumber)
	}
}

func TestRenderItemDiscountClamped(t *testing.T) {
	o := paidOrder()
	o.Items[0].DiscountValue = decimal.RequireFromString("500.00")
	o.Items[0].DiscountType = enum.DiscountTypeFixed

	v, err := Render(o, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// Discount clamps to the 70.00 gross; the line never goes negative
	if got := v.Lines[0].Discount.StringFixed(2); got != "70.00" {
		t.Errorf("discount = %s, want 70.00", got)
	}
	if got := v.Lines[0].LineTotal.StringFixed(2); got != "0.00" {
		t.Errorf("line total = %s, want 0.00", got)
	}
}

func TestRenderOrderDiscountDisplay(t *testing.T) {
	o := paidOrder()
	o.DiscountValue = decimal.RequireFromString("10")
	o.DiscountType = enum.DiscountTypePercentage

	v, err := Render(o, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := v.Discount.StringFixed(2); got != "7.00" {
		t.Errorf("discount = %s, want 7.00 (10%% of 70.00)", got)
	}
}
