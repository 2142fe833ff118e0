package repository

import (
	"context"
	"time"

	"github.com/partsunlimited/storefront/internal/domain"
)

// CartRepository defines persistence for shopping carts.
type CartRepository interface {
	// Get retrieves a cart by its identifier. Returns a NotFound error when no
	// cart exists for the identifier; callers treat that as an empty cart.
	Get(ctx context.Context, cartID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart with the same identifier.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart. Deleting an absent cart is not an error.
	Delete(ctx context.Context, cartID string) error
}

// ProductRepository defines persistence for catalog products.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error

	// Recommendations returns up to limit products sharing the subject's
	// recommendation group, excluding the subject itself.
	Recommendations(ctx context.Context, productID string, limit int) ([]domain.Product, error)

	// TopSellers returns products ordered by how many order lines reference them.
	TopSellers(ctx context.Context, limit int) ([]domain.Product, error)

	// NewArrivals returns the most recently created products.
	NewArrivals(ctx context.Context, limit int) ([]domain.Product, error)

	// Latest returns the single most recently created product.
	Latest(ctx context.Context) (*domain.Product, error)
}

// CategoryRepository defines persistence for product categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}

// OrderFilter narrows order listings. Nil fields are ignored.
type OrderFilter struct {
	Username *string
	Start    *time.Time
	End      *time.Time
	// Search matches against customer name, email, and street address.
	Search  *string
	Page    int
	PerPage int
}

// OrderRepository defines persistence for orders.
type OrderRepository interface {
	// Create inserts the order and all of its line items in one transaction.
	Create(ctx context.Context, o *domain.Order) error

	// GetByID retrieves an order with its line items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter, newest first, with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
}

// RaincheckRepository defines persistence for rainchecks.
type RaincheckRepository interface {
	List(ctx context.Context) ([]domain.Raincheck, error)
	GetByID(ctx context.Context, id string) (*domain.Raincheck, error)
	Create(ctx context.Context, r *domain.Raincheck) error
}
