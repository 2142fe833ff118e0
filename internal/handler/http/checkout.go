package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partsunlimited/storefront/internal/service"
	"github.com/partsunlimited/storefront/pkg/httputil"
	"github.com/partsunlimited/storefront/pkg/validator"
)

// CheckoutHandler exposes cart checkout over HTTP.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// Routes mounts the checkout endpoint.
func (h *CheckoutHandler) Routes(r chi.Router) {
	r.Post("/", h.PlaceOrder)
}

// PlaceOrder converts the shopper's cart into an order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	req.Username = UsernameFromRequest(r)

	confirmation, err := h.checkout.PlaceOrder(r.Context(), CartIDFromRequest(r), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: confirmation})
}
