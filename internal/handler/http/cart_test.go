package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/partsunlimited/storefront/internal/domain"
	"github.com/partsunlimited/storefront/internal/pricing"
	"github.com/partsunlimited/storefront/internal/repository"
	"github.com/partsunlimited/storefront/internal/service"
	apperrors "github.com/partsunlimited/storefront/pkg/errors"
)

// --- Mocks ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) Recommendations(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) TopSellers(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) NewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Latest(ctx context.Context) (*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

// noopPublisher satisfies service.EventPublisher without a broker.
type noopPublisher struct{}

func (noopPublisher) CartUpdated(context.Context, *domain.Cart, string, int) error { return nil }
func (noopPublisher) CartCleared(context.Context, string) error                    { return nil }
func (noopPublisher) OrderPlaced(context.Context, *domain.Order) error             { return nil }
func (noopPublisher) ProductAnnounced(context.Context, *domain.Product) error      { return nil }

// --- Test helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newCartTestRouter(carts *mockCartRepository, products *mockProductRepository) chi.Router {
	logger := testLogger()
	svc := service.NewCartService(carts, products, pricing.NewCalculator(), noopPublisher{}, logger)
	handler := NewCartHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(CartSession(time.Hour))
	r.Route("/cart", handler.Routes)
	return r
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

// --- Tests ---

func TestCartGet_EmptyCart(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	router := newCartTestRouter(carts, products)

	carts.On("Get", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, apperrors.NotFound("cart", "any"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	view := decodeData[service.CartView](t, rec)
	assert.Equal(t, 0, view.ItemCount)
	assert.Equal(t, "$0.00", view.Total)
}

func TestCartAddItem(t *testing.T) {
	carts := new(mockCartRepository)
	products := new(mockProductRepository)
	router := newCartTestRouter(carts, products)

	productID := "22222222-2222-2222-2222-222222222222"
	carts.On("Get", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, apperrors.NotFound("cart", "any"))
	products.On("GetByID", mock.Anything, productID).Return(&domain.Product{
		ID:    productID,
		SKU:   "BP-100",
		Title: "Brake Pads",
		Price: decimal.RequireFromString("24.00"),
	}, nil)
	carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)

	body, _ := json.Marshal(map[string]any{"product_id": productID, "quantity": 2})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decodeData[service.CartView](t, rec)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "$48.00", view.Subtotal)
}

func TestCartAddItem_ValidationFailure(t *testing.T) {
	router := newCartTestRouter(new(mockCartRepository), new(mockProductRepository))

	body, _ := json.Marshal(map[string]any{"product_id": "", "quantity": 0})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRemoveItem_DecrementsAndReportsRemaining(t *testing.T) {
	carts := new(mockCartRepository)
	router := newCartTestRouter(carts, new(mockProductRepository))

	carts.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(&domain.Cart{
		ID: "any",
		Items: []domain.CartLineItem{
			{ProductID: "prod-1", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3},
		},
	}, nil)
	carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart/items/prod-1", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeData[removeItemResponse](t, rec)
	assert.Equal(t, 2, resp.Remaining)
	require.Len(t, resp.Cart.Cart.Items, 1)
	assert.Equal(t, 2, resp.Cart.Cart.Items[0].Quantity)
}

func TestCartRemoveItem_NotInCart(t *testing.T) {
	carts := new(mockCartRepository)
	router := newCartTestRouter(carts, new(mockProductRepository))

	carts.On("Get", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, apperrors.NotFound("cart", "any"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart/items/prod-1", nil)
	router.ServeHTTP(rec, req)

	// Removing from an absent cart is a quiet no-op.
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeData[removeItemResponse](t, rec)
	assert.Equal(t, 0, resp.Remaining)
}

func TestCartClear(t *testing.T) {
	carts := new(mockCartRepository)
	router := newCartTestRouter(carts, new(mockProductRepository))

	carts.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartCount(t *testing.T) {
	carts := new(mockCartRepository)
	router := newCartTestRouter(carts, new(mockProductRepository))

	cartID := "44444444-4444-4444-4444-444444444444"
	carts.On("Get", mock.Anything, cartID).Return(&domain.Cart{
		ID: cartID,
		Items: []domain.CartLineItem{
			{ProductID: "p1", UnitPrice: decimal.RequireFromString("1.00"), Quantity: 2},
			{ProductID: "p2", UnitPrice: decimal.RequireFromString("2.00"), Quantity: 3},
		},
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart/count", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cartID})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData[map[string]int](t, rec)
	assert.Equal(t, 5, data["count"])
}
