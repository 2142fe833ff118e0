package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a transient, per-shopper collection of selected products awaiting
// checkout. It is addressed by an opaque identifier carried in the shopper's
// session cookie; a cart exists implicitly once an item is added and an
// unknown identifier behaves as an empty cart.
type Cart struct {
	ID        string         `json:"id"`
	Items     []CartLineItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CartLineItem is one (product, quantity, price) tuple within a cart.
// UnitPrice is snapshotted when the product is first added and is not
// refreshed on later increments (price-lock at add time).
type CartLineItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// FindItemIndex returns the index of the line item for the given product,
// or -1 if the product is not in the cart.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Count returns the total quantity across all line items.
func (c *Cart) Count() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Total returns the cart total at locked prices: Σ(quantity × unit price).
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
