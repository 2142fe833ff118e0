// Package http wires the storefront services to a chi router.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partsunlimited/storefront/internal/service"
	"github.com/partsunlimited/storefront/pkg/httputil"
	"github.com/partsunlimited/storefront/pkg/validator"
)

// CartHandler exposes the shopping cart over HTTP.
type CartHandler struct {
	carts  *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// Routes mounts the cart endpoints.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Get("/count", h.Count)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{productID}", h.RemoveItem)
	r.Delete("/", h.Clear)
}

// Get returns the cart with its cost breakdown.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.GetCart(r.Context(), CartIDFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Count returns the total quantity in the cart, for the mini-cart badge.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.carts.Count(r.Context(), CartIDFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"count": count}})
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// AddItem adds a product to the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.carts.AddItem(r.Context(), CartIDFromRequest(r), req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

type removeItemResponse struct {
	Remaining int               `json:"remaining"`
	Cart      *service.CartView `json:"cart"`
}

// RemoveItem takes one unit of a product out of the cart and reports the
// quantity left on that line.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	view, remaining, err := h.carts.RemoveItem(r.Context(), CartIDFromRequest(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: removeItemResponse{Remaining: remaining, Cart: view},
	})
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), CartIDFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
