package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Price is the current list price;
// SalePrice is the discounted price shown on promotions.
type Product struct {
	ID                  string            `json:"id"`
	SKU                 string            `json:"sku"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	Price               decimal.Decimal   `json:"price"`
	SalePrice           decimal.Decimal   `json:"sale_price"`
	ArtURL              string            `json:"art_url,omitempty"`
	CategoryID          string            `json:"category_id"`
	RecommendationGroup int               `json:"recommendation_group"`
	Inventory           int               `json:"inventory"`
	LeadTime            int               `json:"lead_time"`
	Details             map[string]string `json:"details,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Category groups products for browsing.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}
