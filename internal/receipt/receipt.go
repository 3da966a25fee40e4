// Package receipt renders paid orders into printable receipt views.
package receipt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
)

var ErrNotPaid = errors.New("order is not paid")

var hundred = decimal.NewFromInt(100)

// Line is one receipt row.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Modifiers []domain.Modifier
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// View is the rendered receipt. Duplicate reflects the reprint counter at
// render time: the payment-time print is the original, everything after is
// stamped duplicate.
type View struct {
	ReceiptNumber string
	OrderNumber   string
	Type          string
	PaymentMethod string
	PaidAt        time.Time
	TableNumber   *int
	Lines         []Line
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
	ReprintCount  int
	Duplicate     bool
}

// TableResolver looks up the table a settled order referenced.
type TableResolver interface {
	GetTable(id uuid.UUID) (domain.Table, bool)
}

// Render builds the receipt view for a paid order.
func Render(o *domain.Order, tables TableResolver) (*View, error) {
	if o.Status != enum.OrderStatusPaid || o.PaidAt == nil {
		return nil, ErrNotPaid
	}

	v := &View{
		ReceiptNumber: o.ReceiptNumber,
		OrderNumber:   o.OrderNumber,
		Type:          o.Type,
		PaymentMethod: o.PaymentMethod,
		PaidAt:        *o.PaidAt,
		Subtotal:      o.Subtotal,
		Discount:      orderDiscount(o),
		Tax:           o.Tax,
		ServiceCharge: o.ServiceCharge,
		Total:         o.Total,
		ReprintCount:  o.ReprintCount,
		Duplicate:     o.ReprintCount > 0,
	}

	if o.TableID != nil && tables != nil {
		if t, ok := tables.GetTable(*o.TableID); ok {
			n := t.Number
			v.TableNumber = &n
		}
	}

	for _, it := range o.Items {
		gross := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		disc := itemDiscount(gross, it)
		v.Lines = append(v.Lines, Line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Modifiers: append([]domain.Modifier(nil), it.Modifiers...),
			Discount:  disc,
			LineTotal: gross.Sub(disc),
		})
	}
	return v, nil
}

// orderDiscount converts the stored discount setting into a display amount.
func orderDiscount(o *domain.Order) decimal.Decimal {
	if o.DiscountType == enum.DiscountTypePercentage {
		return o.Subtotal.Mul(o.DiscountValue).Div(hundred)
	}
	return decimal.Min(o.DiscountValue, o.Subtotal)
}

func itemDiscount(gross decimal.Decimal, it domain.OrderItem) decimal.Decimal {
	if it.DiscountValue.IsZero() {
		return decimal.Zero
	}
	var d decimal.Decimal
	if it.DiscountType == enum.DiscountTypeFixed {
		d = decimal.Min(gross, it.DiscountValue)
	} else {
		d = gross.Mul(it.DiscountValue).Div(hundred)
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(gross) {
		return gross
	}
	return d
}
