package domain

import "github.com/shopspring/decimal"

// Store is a physical store location that can honor rainchecks.
type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Raincheck is a promise to sell a product at a given sale price from a
// specific store once it is back in stock.
type Raincheck struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ProductID string          `json:"product_id"`
	StoreID   string          `json:"store_id"`
	Quantity  int             `json:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price"`

	Store   *Store   `json:"store,omitempty"`
	Product *Product `json:"product,omitempty"`
}
