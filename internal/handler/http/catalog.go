package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partsunlimited/storefront/internal/service"
	"github.com/partsunlimited/storefront/pkg/httputil"
	"github.com/partsunlimited/storefront/pkg/validator"
)

// CatalogHandler exposes catalog browsing and admin product management.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// Routes mounts the public catalog endpoints.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/home", h.Home)
	r.Get("/categories", h.Categories)
	r.Get("/categories/{categoryID}/products", h.CategoryProducts)
	r.Get("/products/search", h.Search)
	r.Get("/products/{productID}", h.ProductDetails)
}

// AdminRoutes mounts the product management endpoints.
func (h *CatalogHandler) AdminRoutes(r chi.Router) {
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{productID}", h.UpdateProduct)
	r.Delete("/products/{productID}", h.DeleteProduct)
}

// Home returns the landing page showcases.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	showcase, err := h.catalog.Home(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: showcase})
}

// Categories lists all product categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// CategoryProducts returns a category and its products.
func (h *CatalogHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	category, products, err := h.catalog.CategoryProducts(r.Context(), categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"category": category,
		"products": products,
	}})
}

// Search returns products matching the q query parameter.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// ProductDetails returns a product with its recommendations.
func (h *CatalogHandler) ProductDetails(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	details, err := h.catalog.ProductDetails(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: details})
}

// CreateProduct adds a product to the catalog.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct rewrites a product's fields.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var input service.ProductInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), productID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct removes a product from the catalog.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
