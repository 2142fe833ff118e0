// Package pricing computes shipping, tax, and totals for a set of line items.
//
// The rounding rules are load-bearing: historical invoice totals were produced
// with them, so shipping truncates to whole currency units and tax rounds
// half away from zero (not banker's rounding). Do not change them.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/partsunlimited/storefront/internal/domain"
)

// Line is the quantity/price pair the calculator operates on.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Calculator derives order costs from line items. It is pure: no I/O, no state
// beyond the two configured rates.
type Calculator struct {
	shippingRatePerItem decimal.Decimal
	taxRate             decimal.Decimal
}

// NewCalculator returns a calculator with the storefront's standard rates:
// flat 5.00 shipping per item and 5% tax on subtotal plus shipping.
func NewCalculator() *Calculator {
	return &Calculator{
		shippingRatePerItem: decimal.RequireFromString("5.00"),
		taxRate:             decimal.RequireFromString("0.05"),
	}
}

// NewCalculatorWithRates returns a calculator with custom rates.
func NewCalculatorWithRates(shippingRatePerItem, taxRate decimal.Decimal) *Calculator {
	return &Calculator{
		shippingRatePerItem: shippingRatePerItem,
		taxRate:             taxRate,
	}
}

// Subtotal returns Σ(quantity × unit price), decimal-exact.
func (c *Calculator) Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return subtotal
}

// Shipping returns the total quantity times the per-item rate, truncated to
// whole currency units.
func (c *Calculator) Shipping(lines []Line) decimal.Decimal {
	var qty int64
	for _, l := range lines {
		qty += int64(l.Quantity)
	}
	return decimal.NewFromInt(qty).Mul(c.shippingRatePerItem).Truncate(0)
}

// Tax returns (subtotal + shipping) × tax rate, rounded half away from zero to
// whole currency units. decimal.Round implements exactly that midpoint rule.
func (c *Calculator) Tax(lines []Line) decimal.Decimal {
	var qty int64
	for _, l := range lines {
		qty += int64(l.Quantity)
	}
	// Shipping enters the taxable base before its own truncation, matching the
	// legacy calculation order.
	shipping := decimal.NewFromInt(qty).Mul(c.shippingRatePerItem)
	return c.Subtotal(lines).Add(shipping).Mul(c.taxRate).Round(0)
}

// CostBreakdown holds the four monetary components of an order's cost.
type CostBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Cost computes the full breakdown. Empty input yields all zeros.
func (c *Calculator) Cost(lines []Line) CostBreakdown {
	subtotal := c.Subtotal(lines)
	shipping := c.Shipping(lines)
	tax := c.Tax(lines)
	return CostBreakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// OrderCostSummary is the display-only formatted form of a CostBreakdown.
// It is derived for presentation and never persisted.
type OrderCostSummary struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Summary formats the breakdown as currency strings.
func (b CostBreakdown) Summary() OrderCostSummary {
	return OrderCostSummary{
		Subtotal: formatCurrency(b.Subtotal),
		Shipping: formatCurrency(b.Shipping),
		Tax:      formatCurrency(b.Tax),
		Total:    formatCurrency(b.Total),
	}
}

func formatCurrency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// LinesFromCart converts cart line items to calculator lines at their locked
// prices.
func LinesFromCart(items []domain.CartLineItem) []Line {
	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// LinesFromOrder converts order line items to calculator lines.
func LinesFromOrder(items []domain.OrderLineItem) []Line {
	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}
