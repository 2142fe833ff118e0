package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/pricing"
	"github.com/partsunlimited/storefront/internal/repository"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

// promoCode is the only promo code the store honors. Checkout requires it.
const promoCode = "FREE"

// CheckoutService converts carts into orders.
type CheckoutService struct {
	carts      repository.CartRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	calculator *pricing.Calculator
	events     EventPublisher
	logger     *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	calculator *pricing.Calculator,
	events EventPublisher,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:      carts,
		products:   products,
		orders:     orders,
		calculator: calculator,
		events:     events,
		logger:     logger,
	}
}

// CheckoutRequest carries the shipping details and promo code for an order.
type CheckoutRequest struct {
	Username   string `json:"-"`
	Name       string `json:"name" validate:"required,max=160"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=90"`
	PromoCode  string `json:"promo_code" validate:"required"`
}

// OrderConfirmation is the result of a successful checkout.
type OrderConfirmation struct {
	Order   *domain.Order            `json:"order"`
	Summary pricing.OrderCostSummary `json:"summary"`
}

// PlaceOrder converts the shopper's cart into a persisted order.
//
// Line items are repriced from the current catalog rather than the prices
// locked in the cart, matching the store's long-standing checkout behavior.
// The order and its items are written in a single transaction and the cart
// is cleared only after that transaction commits, so a failed checkout
// leaves the cart intact.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cartID string, req CheckoutRequest) (*OrderConfirmation, error) {
	if !strings.EqualFold(req.PromoCode, promoCode) {
		return nil, apperrors.InvalidInput("invalid promo code")
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		// An absent cart checks out as an empty order.
		cart = &domain.Cart{ID: cartID}
	}

	orderID := uuid.New().String()
	now := time.Now().UTC()

	items := make([]domain.OrderLineItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, apperrors.ConversionFailed(
				fmt.Sprintf("product %s is no longer available", line.ProductID), err)
		}
		items = append(items, domain.OrderLineItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: product.ID,
			Title:     product.Title,
			SKU:       product.SKU,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}

	breakdown := s.calculator.Cost(pricing.LinesFromOrder(items))

	// The persisted total is the item subtotal at current prices; shipping
	// and tax stay display-side concerns of the cost summary.
	order := &domain.Order{
		ID:         orderID,
		Username:   req.Username,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Total:      breakdown.Subtotal,
		Items:      items,
		CreatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logger.WarnContext(ctx, "cart not cleared after checkout",
			slog.String("cart_id", cartID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.events.OrderPlaced(ctx, order); err != nil {
		s.logger.WarnContext(ctx, "order.placed event not published",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("username", order.Username),
		slog.Int("items", len(order.Items)),
		slog.String("total", order.Total.StringFixed(2)),
	)

	return &OrderConfirmation{Order: order, Summary: breakdown.Summary()}, nil
}
