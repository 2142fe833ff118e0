package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a finalized purchase. It is created atomically with its line items
// at checkout and is immutable afterward; Total is a historical snapshot of
// Σ(quantity × unit price at checkout) and is never recomputed.
type Order struct {
	ID         string          `json:"id"`
	Username   string          `json:"username"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	City       string          `json:"city"`
	State      string          `json:"state"`
	PostalCode string          `json:"postal_code"`
	Country    string          `json:"country"`
	Total      decimal.Decimal `json:"total"`
	Items      []OrderLineItem `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderLineItem is one line of an order. UnitPrice is the catalog price at
// checkout time, independent of any price the cart had locked in.
type OrderLineItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns quantity × unit price for this line.
func (i *OrderLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
