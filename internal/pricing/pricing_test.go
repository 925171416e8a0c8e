package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directsales/internal/domain"
)

func cents(v int64) *int64 { return &v }

func TestCalculate_VATScenario(t *testing.T) {
	got := Calculate([]Line{{UnitPriceCents: cents(10000), Quantity: 2}}, VATRate)

	assert.Equal(t, "200.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", got.Tax.StringFixed(2))
	assert.Equal(t, "230.00", got.Total.StringFixed(2))
}

func TestCalculate_DisplayRate(t *testing.T) {
	got := Calculate([]Line{{UnitPriceCents: cents(2500), Quantity: 1}}, DisplayRate)

	assert.True(t, got.Tax.Equal(decimal.RequireFromString("2")))
	assert.Equal(t, Summary{Subtotal: "25.00", Tax: "2.00", Total: "27.00", TaxRate: "8%"}, got.Display())
}

func TestCalculate_Invariants(t *testing.T) {
	lines := []Line{
		{UnitPriceCents: cents(1999), Quantity: 3},
		{UnitPriceCents: nil, Quantity: 4},
		{UnitPriceCents: cents(1), Quantity: 7},
	}
	for _, rate := range []decimal.Decimal{DisplayRate, VATRate} {
		got := Calculate(lines, rate)
		assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax)))
		assert.True(t, got.Tax.Equal(got.Subtotal.Mul(rate)))
		assert.False(t, got.Total.IsNegative())
	}
}

func TestCalculate_MonotonicInQuantity(t *testing.T) {
	prev := decimal.Zero
	for qty := 1; qty <= 10; qty++ {
		got := Calculate([]Line{{UnitPriceCents: cents(333), Quantity: qty}}, VATRate)
		require.True(t, got.Subtotal.GreaterThanOrEqual(prev), "qty %d", qty)
		prev = got.Subtotal
	}
}

func TestCalculate_IgnoresBadLines(t *testing.T) {
	got := Calculate([]Line{
		{UnitPriceCents: cents(-500), Quantity: 1},
		{UnitPriceCents: cents(500), Quantity: 0},
	}, decimal.NewFromInt(-1))

	assert.True(t, got.Total.IsZero())
	assert.True(t, got.Rate.IsZero())
}

func TestCalculate_KeepsUnroundedTax(t *testing.T) {
	got := Calculate([]Line{{UnitPriceCents: cents(1999), Quantity: 1}}, VATRate)

	assert.Equal(t, "2.9985", got.Tax.String())
	assert.Equal(t, "3.00", got.Display().Tax)
}

func TestLinesFromCart(t *testing.T) {
	items := []domain.CartItem{
		{Quantity: 2, Snapshot: domain.CartItemSnapshot{PriceCents: cents(150)}},
		{Quantity: 1},
	}
	lines := LinesFromCart(items)

	require.Len(t, lines, 2)
	assert.Equal(t, int64(150), *lines[0].UnitPriceCents)
	assert.Nil(t, lines[1].UnitPriceCents)
}
