package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partsunlimited/storefront/internal/cache"
	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/repository"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

const (
	recommendationLimit = 3
	showcaseLimit       = 4
)

// CatalogService serves the product catalog: browsing, search, product
// details with recommendations, the home page showcases, and admin CRUD.
type CatalogService struct {
	products            repository.ProductRepository
	categories          repository.CategoryRepository
	showcase            *cache.ShowcaseCache
	events              EventPublisher
	showRecommendations bool
	logger              *slog.Logger
}

// NewCatalogService creates a new catalog service. When showRecommendations
// is false, ProductDetails returns no recommendations.
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	showcase *cache.ShowcaseCache,
	events EventPublisher,
	showRecommendations bool,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		products:            products,
		categories:          categories,
		showcase:            showcase,
		events:              events,
		showRecommendations: showRecommendations,
		logger:              logger,
	}
}

// Categories lists all product categories.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// CategoryProducts returns a category together with its products.
func (s *CatalogService) CategoryProducts(ctx context.Context, categoryID string) (*domain.Category, []domain.Product, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.products.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}

// Search returns products matching the query. An empty query matches nothing.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return []domain.Product{}, nil
	}
	return s.products.Search(ctx, query)
}

// ProductDetails is a product together with its recommendations.
type ProductDetails struct {
	Product         *domain.Product  `json:"product"`
	Recommendations []domain.Product `json:"recommendations"`
}

// ProductDetails returns a product and up to three products from the same
// recommendation group, excluding the product itself.
func (s *CatalogService) ProductDetails(ctx context.Context, productID string) (*ProductDetails, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	details := &ProductDetails{
		Product:         product,
		Recommendations: []domain.Product{},
	}

	if s.showRecommendations {
		recs, err := s.products.Recommendations(ctx, productID, recommendationLimit)
		if err != nil {
			s.logger.WarnContext(ctx, "recommendations unavailable",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		} else {
			details.Recommendations = recs
		}
	}

	return details, nil
}

// HomeShowcase is the content of the store's landing page.
type HomeShowcase struct {
	TopSellers    []domain.Product `json:"top_sellers"`
	NewArrivals   []domain.Product `json:"new_arrivals"`
	LatestProduct *domain.Product  `json:"latest_product,omitempty"`
}

// Home returns the landing page showcases, served from the showcase cache.
func (s *CatalogService) Home(ctx context.Context) (*HomeShowcase, error) {
	topSellers, err := s.showcase.TopSellers(ctx, showcaseLimit)
	if err != nil {
		return nil, fmt.Errorf("load top sellers: %w", err)
	}

	newArrivals, err := s.showcase.NewArrivals(ctx, showcaseLimit)
	if err != nil {
		return nil, fmt.Errorf("load new arrivals: %w", err)
	}

	showcase := &HomeShowcase{
		TopSellers:  topSellers,
		NewArrivals: newArrivals,
	}

	latest, err := s.showcase.Latest(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("load latest product: %w", err)
	}
	showcase.LatestProduct = latest

	return showcase, nil
}

// ProductInput carries the fields for creating or updating a product.
type ProductInput struct {
	SKU                 string            `json:"sku" validate:"required,max=50"`
	Title               string            `json:"title" validate:"required,max=160"`
	Description         string            `json:"description"`
	Price               decimal.Decimal   `json:"price" validate:"required"`
	SalePrice           decimal.Decimal   `json:"sale_price"`
	ArtURL              string            `json:"art_url" validate:"omitempty,url"`
	CategoryID          string            `json:"category_id" validate:"required,uuid"`
	RecommendationGroup int               `json:"recommendation_group" validate:"gte=0"`
	Inventory           int               `json:"inventory" validate:"gte=0"`
	LeadTime            int               `json:"lead_time" validate:"gte=0"`
	Details             map[string]string `json:"details"`
}

// CreateProduct adds a product to the catalog, invalidates the showcases,
// and announces the new product.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Price.Sign() < 0 || input.SalePrice.Sign() < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:                  uuid.New().String(),
		SKU:                 input.SKU,
		Title:               input.Title,
		Description:         input.Description,
		Price:               input.Price,
		SalePrice:           input.SalePrice,
		ArtURL:              input.ArtURL,
		CategoryID:          input.CategoryID,
		RecommendationGroup: input.RecommendationGroup,
		Inventory:           input.Inventory,
		LeadTime:            input.LeadTime,
		Details:             input.Details,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateShowcase(ctx)

	if err := s.events.ProductAnnounced(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "product.announced event not published",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}

// UpdateProduct rewrites a product's fields and invalidates the showcases.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if input.Price.Sign() < 0 || input.SalePrice.Sign() < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product.SKU = input.SKU
	product.Title = input.Title
	product.Description = input.Description
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	product.ArtURL = input.ArtURL
	product.CategoryID = input.CategoryID
	product.RecommendationGroup = input.RecommendationGroup
	product.Inventory = input.Inventory
	product.LeadTime = input.LeadTime
	product.Details = input.Details
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateShowcase(ctx)

	return product, nil
}

// DeleteProduct removes a product and invalidates the showcases.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateShowcase(ctx)
	return nil
}

func (s *CatalogService) invalidateShowcase(ctx context.Context) {
	if err := s.showcase.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "showcase cache not invalidated", slog.String("error", err.Error()))
	}
}
