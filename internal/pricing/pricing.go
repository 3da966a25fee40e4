// Package pricing computes order totals. Calculate is a pure function:
// totals are recomputed from scratch on every mutation, never patched
// incrementally, so item edits can never leave totals stale.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mehrabrahat/ITZENBD-POS/internal/domain"
	"github.com/mehrabrahat/ITZENBD-POS/internal/enum"
)

var hundred = decimal.NewFromInt(100)

// Rates are the configured tax and service charge percentages (as fractions).
type Rates struct {
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
}

// NewRates builds Rates from config floats.
func NewRates(taxRate, serviceRate float64) Rates {
	return Rates{
		Tax:           decimal.NewFromFloat(taxRate),
		ServiceCharge: decimal.NewFromFloat(serviceRate),
	}
}

// Totals is the monetary snapshot stored on an order.
type Totals struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
}

// Calculate computes totals for the given items and order-level discount.
//
// Item discounts are clamped to [0, lineGross] so no line goes negative; the
// order discount is clamped to the subtotal. Tax and service charge apply to
// the discounted subtotal.
func Calculate(items []domain.OrderItem, discountValue decimal.Decimal, discountType string, rates Rates) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		lineGross := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineGross.Sub(lineDiscount(lineGross, it.DiscountValue, it.DiscountType)))
	}

	var discount decimal.Decimal
	if discountType == enum.DiscountTypePercentage {
		discount = subtotal.Mul(discountValue).Div(hundred)
	} else {
		discount = decimal.Min(discountValue, subtotal)
	}

	discounted := subtotal.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	tax := discounted.Mul(rates.Tax)
	service := discounted.Mul(rates.ServiceCharge)

	return Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		Tax:           tax,
		ServiceCharge: service,
		Total:         discounted.Add(tax).Add(service),
	}
}

// lineDiscount returns the discount amount for one line, clamped so the
// discount never exceeds the line itself.
func lineDiscount(lineGross, value decimal.Decimal, discountType string) decimal.Decimal {
	if value.IsZero() {
		return decimal.Zero
	}
	var d decimal.Decimal
	if discountType == enum.DiscountTypeFixed {
		d = decimal.Min(lineGross, value)
	} else {
		d = lineGross.Mul(value).Div(hundred)
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(lineGross) {
		return lineGross
	}
	return d
}
