package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/repository"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

// RaincheckService manages rainchecks issued by physical stores.
type RaincheckService struct {
	rainchecks repository.RaincheckRepository
	products   repository.ProductRepository
	logger     *slog.Logger
}

// NewRaincheckService creates a new raincheck service.
func NewRaincheckService(rainchecks repository.RaincheckRepository, products repository.ProductRepository, logger *slog.Logger) *RaincheckService {
	return &RaincheckService{rainchecks: rainchecks, products: products, logger: logger}
}

// List returns all rainchecks with their stores and products.
func (s *RaincheckService) List(ctx context.Context) ([]domain.Raincheck, error) {
	return s.rainchecks.List(ctx)
}

// Get returns a raincheck by ID.
func (s *RaincheckService) Get(ctx context.Context, id string) (*domain.Raincheck, error) {
	return s.rainchecks.GetByID(ctx, id)
}

// RaincheckInput carries the fields for issuing a raincheck.
type RaincheckInput struct {
	Name      string          `json:"name" validate:"required,max=160"`
	ProductID string          `json:"product_id" validate:"required,uuid"`
	StoreID   string          `json:"store_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price" validate:"required"`
}

// Issue creates a raincheck after validating the quantity and product.
func (s *RaincheckService) Issue(ctx context.Context, input RaincheckInput) (*domain.Raincheck, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidQuantity("raincheck quantity must be positive")
	}
	if input.SalePrice.Sign() < 0 {
		return nil, apperrors.InvalidInput("sale price must not be negative")
	}
	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	rc := &domain.Raincheck{
		ID:        uuid.New().String(),
		Name:      input.Name,
		ProductID: input.ProductID,
		StoreID:   input.StoreID,
		Quantity:  input.Quantity,
		SalePrice: input.SalePrice,
	}

	if err := s.rainchecks.Create(ctx, rc); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "raincheck issued",
		slog.String("raincheck_id", rc.ID),
		slog.String("product_id", rc.ProductID),
		slog.String("store_id", rc.StoreID),
	)

	return rc, nil
}
