package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/partsunlimited/storefront/internal/service"
	"github.com/partsunlimited/storefront/pkg/httputil"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// OrderHandler exposes order history over HTTP.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// Routes mounts the order history endpoints.
func (h *OrderHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{orderID}", h.Get)
}

// List returns the caller's orders, filtered by date range and search text.
// Admin callers may pass username= to see any shopper's orders, or omit it
// to see all orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	admin := IsAdmin(r)

	query := service.OrderListQuery{
		Username: UsernameFromRequest(r),
		Search:   q.Get("search"),
		Page:     parseIntParam(q.Get("page"), 1),
		PerPage:  parseIntParam(q.Get("per_page"), defaultPerPage),
		Admin:    admin,
	}
	if query.PerPage > maxPerPage {
		query.PerPage = maxPerPage
	}
	if admin {
		query.Username = q.Get("username")
	}

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		query.Start = &t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		query.End = &t
	}

	orders, total, err := h.orders.List(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK,
		httputil.NewPaginatedResponse(orders, total, query.Page, query.PerPage))
}

// Get returns one order with its cost summary.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	view, err := h.orders.Get(r.Context(), orderID, UsernameFromRequest(r), IsAdmin(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

func parseIntParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
