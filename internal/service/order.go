package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/pricing"
	"github.com/partsunlimited/storefront/internal/repository"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

// OrderService serves order history.
type OrderService struct {
	orders     repository.OrderRepository
	calculator *pricing.Calculator
	logger     *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, calculator *pricing.Calculator, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, calculator: calculator, logger: logger}
}

// OrderListQuery narrows an order history listing.
type OrderListQuery struct {
	Username string
	Start    *time.Time
	End      *time.Time
	Search   string
	Page     int
	PerPage  int
	// Admin listings may omit the username and see all orders.
	Admin bool
}

// List returns orders matching the query, newest first, with the total count.
// Non-admin queries always scope to the caller's username.
func (s *OrderService) List(ctx context.Context, q OrderListQuery) ([]domain.Order, int, error) {
	filter := repository.OrderFilter{
		Start:   q.Start,
		End:     q.End,
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if !q.Admin || q.Username != "" {
		filter.Username = &q.Username
	}
	if q.Search != "" {
		filter.Search = &q.Search
	}

	return s.orders.List(ctx, filter)
}

// OrderView is an order together with its cost summary recomputed from its
// line items.
type OrderView struct {
	Order   *domain.Order            `json:"order"`
	Summary pricing.OrderCostSummary `json:"summary"`
}

// Get returns an order with its cost summary. Non-admin callers may only see
// their own orders; anyone else's order reads as not found.
func (s *OrderService) Get(ctx context.Context, id, username string, admin bool) (*OrderView, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && order.Username != username {
		return nil, apperrors.NotFound("order", id)
	}

	breakdown := s.calculator.Cost(pricing.LinesFromOrder(order.Items))
	return &OrderView{Order: order, Summary: breakdown.Summary()}, nil
}
