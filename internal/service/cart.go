package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/pricing"
	"github.com/partsunlimited/storefront/internal/repository"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

// EventPublisher emits domain events for cart and order activity. A nil
// implementation is not allowed; wire the Kafka publisher or a no-op in tests.
type EventPublisher interface {
	CartUpdated(ctx context.Context, cart *domain.Cart, productID string, quantity int) error
	CartCleared(ctx context.Context, cartID string) error
	OrderPlaced(ctx context.Context, order *domain.Order) error
	ProductAnnounced(ctx context.Context, product *domain.Product) error
}

// CartService manages shopping carts. An identifier with no stored cart is
// treated as an empty cart everywhere; carts come into existence on first add.
type CartService struct {
	carts      repository.CartRepository
	products   repository.ProductRepository
	calculator *pricing.Calculator
	events     EventPublisher
	logger     *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	calculator *pricing.Calculator,
	events EventPublisher,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:      carts,
		products:   products,
		calculator: calculator,
		events:     events,
		logger:     logger,
	}
}

// CartView is a cart together with its computed cost breakdown.
type CartView struct {
	Cart      *domain.Cart          `json:"cart"`
	ItemCount int                   `json:"item_count"`
	Subtotal  string                `json:"subtotal"`
	Shipping  string                `json:"shipping"`
	Tax       string                `json:"tax"`
	Total     string                `json:"total"`
	Breakdown pricing.CostBreakdown `json:"-"`
}

// GetCart returns the cart and its cost breakdown. An unknown identifier
// yields an empty cart, never an error.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*CartView, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// AddItem adds quantity units of a product to the cart. If the product is
// already in the cart its quantity is incremented and its unit price keeps
// the value locked at first add. Otherwise the product's current price is
// snapshotted into a new line item.
func (s *CartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidQuantity("quantity must be positive")
	}

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if idx := cart.FindItemIndex(productID); idx >= 0 {
		cart.Items[idx].Quantity += quantity
	} else {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, domain.CartLineItem{
			ProductID: product.ID,
			Title:     product.Title,
			SKU:       product.SKU,
			UnitPrice: product.Price,
			Quantity:  quantity,
			AddedAt:   now,
		})
	}
	cart.UpdatedAt = now

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if err := s.events.CartUpdated(ctx, cart, productID, quantity); err != nil {
		s.logger.WarnContext(ctx, "cart.updated event not published",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}

	return s.view(cart), nil
}

// RemoveItem decrements the product's quantity by one and deletes the line
// item when it reaches zero. It returns the quantity remaining on that line,
// zero when the line was deleted or was never there. Removing from an absent
// cart is a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*CartView, int, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, 0, err
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return s.view(cart), 0, nil
	}

	cart.Items[idx].Quantity--
	remaining := cart.Items[idx].Quantity
	if remaining <= 0 {
		remaining = 0
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	}
	cart.UpdatedAt = time.Now().UTC()

	if len(cart.Items) == 0 {
		if err := s.carts.Delete(ctx, cart.ID); err != nil {
			return nil, 0, fmt.Errorf("delete empty cart: %w", err)
		}
	} else if err := s.carts.Save(ctx, cart); err != nil {
		return nil, 0, fmt.Errorf("save cart: %w", err)
	}

	if err := s.events.CartUpdated(ctx, cart, productID, remaining); err != nil {
		s.logger.WarnContext(ctx, "cart.updated event not published",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}

	return s.view(cart), remaining, nil
}

// Clear removes all items from the cart. Clearing an absent cart succeeds.
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	if err := s.carts.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := s.events.CartCleared(ctx, cartID); err != nil {
		s.logger.WarnContext(ctx, "cart.cleared event not published",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// Count returns the total quantity across the cart's line items.
func (s *CartService) Count(ctx context.Context, cartID string) (int, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

func (s *CartService) load(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			now := time.Now().UTC()
			return &domain.Cart{
				ID:        cartID,
				Items:     []domain.CartLineItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) view(cart *domain.Cart) *CartView {
	breakdown := s.calculator.Cost(pricing.LinesFromCart(cart.Items))
	summary := breakdown.Summary()
	return &CartView{
		Cart:      cart,
		ItemCount: cart.Count(),
		Subtotal:  summary.Subtotal,
		Shipping:  summary.Shipping,
		Tax:       summary.Tax,
		Total:     summary.Total,
		Breakdown: breakdown,
	}
}
