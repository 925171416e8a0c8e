// Package pricing derives cart subtotal, tax and total.
//
// Two regional rates exist and each call site picks exactly one: the cart
// summary shown while shopping uses DisplayRate, checkout uses VATRate.
// Amounts stay unrounded; Display rounds to two places for presentation only.
package pricing

import (
	"github.com/shopspring/decimal"

	"directsales/internal/domain"
)

var (
	// DisplayRate is the generic 8% rate for the cart summary.
	DisplayRate = decimal.RequireFromString("0.08")
	// VATRate is the 15% regional VAT charged at checkout.
	VATRate = decimal.RequireFromString("0.15")
)

var hundred = decimal.NewFromInt(100)

// Line is a captured unit price and a quantity. A nil price counts as zero.
type Line struct {
	UnitPriceCents *int64
	Quantity       int
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Rate     decimal.Decimal `json:"rate"`
}

// Summary is Totals rounded for display.
type Summary struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
	TaxRate  string `json:"taxRate"`
}

// Calculate sums lines and applies rate. Negative prices, quantities and
// rates contribute nothing, so every output is non-negative.
func Calculate(lines []Line, rate decimal.Decimal) Totals {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.UnitPriceCents == nil || *l.UnitPriceCents < 0 || l.Quantity <= 0 {
			continue
		}
		unit := decimal.New(*l.UnitPriceCents, -2)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(rate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
		Rate:     rate,
	}
}

// Display rounds every amount to two decimal places.
func (t Totals) Display() Summary {
	return Summary{
		Subtotal: t.Subtotal.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
		TaxRate:  t.Rate.Mul(hundred).StringFixed(0) + "%",
	}
}

// LinesFromCart uses the price captured on each cart line.
func LinesFromCart(items []domain.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{UnitPriceCents: it.Snapshot.PriceCents, Quantity: it.Quantity})
	}
	return lines
}
