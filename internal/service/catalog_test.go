package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/partsunlimited/storefront/internal/cache"
	"github.com/partsunlimited/storefront/internal/domain"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

func newCatalogService(t *testing.T, products *mockProductRepository, categories *mockCategoryRepository, events *mockEventPublisher, showRecommendations bool) *CatalogService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	showcase := cache.NewShowcaseCache(products, client, 10*time.Minute, newTestLogger())
	return NewCatalogService(products, categories, showcase, events, showRecommendations, newTestLogger())
}

func TestProductDetails_ReturnsRecommendations(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newCatalogService(t, products, categories, new(mockEventPublisher), true)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(testProduct("prod-1", "24.00"), nil)
	products.On("Recommendations", ctx, "prod-1", 3).Return([]domain.Product{
		*testProduct("prod-2", "19.00"),
		*testProduct("prod-3", "29.00"),
	}, nil)

	details, err := svc.ProductDetails(ctx, "prod-1")

	require.NoError(t, err)
	assert.Equal(t, "prod-1", details.Product.ID)
	assert.Len(t, details.Recommendations, 2)
	products.AssertExpectations(t)
}

func TestProductDetails_RecommendationsDisabled(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(t, products, new(mockCategoryRepository), new(mockEventPublisher), false)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(testProduct("prod-1", "24.00"), nil)

	details, err := svc.ProductDetails(ctx, "prod-1")

	require.NoError(t, err)
	assert.Empty(t, details.Recommendations)
	products.AssertNotCalled(t, "Recommendations", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductDetails_RecommendationFailureDegrades(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(t, products, new(mockCategoryRepository), new(mockEventPublisher), true)
	ctx := context.Background()

	products.On("GetByID", ctx, "prod-1").Return(testProduct("prod-1", "24.00"), nil)
	products.On("Recommendations", ctx, "prod-1", 3).Return(nil, assert.AnError)

	details, err := svc.ProductDetails(ctx, "prod-1")

	require.NoError(t, err)
	assert.Empty(t, details.Recommendations)
}

func TestHome_ServesShowcasesFromCacheOnSecondCall(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(t, products, new(mockCategoryRepository), new(mockEventPublisher), true)
	ctx := context.Background()

	products.On("TopSellers", ctx, 4).Return([]domain.Product{*testProduct("prod-1", "10.00")}, nil).Once()
	products.On("NewArrivals", ctx, 4).Return([]domain.Product{*testProduct("prod-2", "20.00")}, nil).Once()
	products.On("Latest", ctx).Return(testProduct("prod-2", "20.00"), nil).Once()

	first, err := svc.Home(ctx)
	require.NoError(t, err)

	// The Once() expectations above make a second repository hit fail.
	second, err := svc.Home(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.TopSellers, second.TopSellers)
	assert.Equal(t, first.NewArrivals, second.NewArrivals)
	require.NotNil(t, second.LatestProduct)
	assert.Equal(t, "prod-2", second.LatestProduct.ID)
	products.AssertExpectations(t)
}

func TestHome_EmptyCatalogHasNoLatestProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(t, products, new(mockCategoryRepository), new(mockEventPublisher), true)
	ctx := context.Background()

	products.On("TopSellers", ctx, 4).Return([]domain.Product{}, nil)
	products.On("NewArrivals", ctx, 4).Return([]domain.Product{}, nil)
	products.On("Latest", ctx).Return(nil, apperrors.ErrNotFound)

	showcase, err := svc.Home(ctx)

	require.NoError(t, err)
	assert.Nil(t, showcase.LatestProduct)
	assert.Empty(t, showcase.TopSellers)
}

func validProductInput() ProductInput {
	return ProductInput{
		SKU:                 "OIL-001",
		Title:               "Synthetic Motor Oil",
		Description:         "5W-30 full synthetic",
		Price:               decimal.RequireFromString("24.00"),
		SalePrice:           decimal.RequireFromString("19.00"),
		CategoryID:          "11111111-1111-1111-1111-111111111111",
		RecommendationGroup: 2,
		Inventory:           10,
		LeadTime:            0,
	}
}

func TestCreateProduct_AnnouncesNewProduct(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	events := new(mockEventPublisher)
	svc := newCatalogService(t, products, categories, events, true)
	ctx := context.Background()

	input := validProductInput()
	categories.On("GetByID", ctx, input.CategoryID).Return(&domain.Category{ID: input.CategoryID, Name: "Oil"}, nil)
	products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	events.On("ProductAnnounced", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.CreateProduct(ctx, input)

	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "OIL-001", product.SKU)
	events.AssertExpectations(t)
}

func TestCreateProduct_RejectsNegativePrice(t *testing.T) {
	svc := newCatalogService(t, new(mockProductRepository), new(mockCategoryRepository), new(mockEventPublisher), true)

	input := validProductInput()
	input.Price = decimal.RequireFromString("-1.00")

	_, err := svc.CreateProduct(context.Background(), input)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newCatalogService(t, products, categories, new(mockEventPublisher), true)
	ctx := context.Background()

	input := validProductInput()
	categories.On("GetByID", ctx, input.CategoryID).Return(nil, apperrors.NotFound("category", input.CategoryID))

	_, err := svc.CreateProduct(ctx, input)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateProduct_RewritesFields(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newCatalogService(t, products, categories, new(mockEventPublisher), true)
	ctx := context.Background()

	existing := testProduct("prod-1", "24.00")
	input := validProductInput()
	input.Title = "Updated Title"

	products.On("GetByID", ctx, "prod-1").Return(existing, nil)
	categories.On("GetByID", ctx, input.CategoryID).Return(&domain.Category{ID: input.CategoryID}, nil)
	products.On("Update", ctx, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == "prod-1" && p.Title == "Updated Title"
	})).Return(nil)

	product, err := svc.UpdateProduct(ctx, "prod-1", input)

	require.NoError(t, err)
	assert.Equal(t, "Updated Title", product.Title)
	products.AssertExpectations(t)
}

func TestSearch_EmptyQueryMatchesNothing(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(t, products, new(mockCategoryRepository), new(mockEventPublisher), true)

	results, err := svc.Search(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, results)
	products.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestCategoryProducts(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newCatalogService(t, products, categories, new(mockEventPublisher), true)
	ctx := context.Background()

	categories.On("GetByID", ctx, "cat-1").Return(&domain.Category{ID: "cat-1", Name: "Brakes"}, nil)
	products.On("ListByCategory", ctx, "cat-1").Return([]domain.Product{*testProduct("prod-1", "10.00")}, nil)

	category, list, err := svc.CategoryProducts(ctx, "cat-1")

	require.NoError(t, err)
	assert.Equal(t, "Brakes", category.Name)
	assert.Len(t, list, 1)
}
