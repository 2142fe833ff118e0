package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partsunlimited/storefront/internal/service"
	"github.com/partsunlimited/storefront/pkg/httputil"
	"github.com/partsunlimited/storefront/pkg/validator"
)

// RaincheckHandler exposes rainchecks over HTTP.
type RaincheckHandler struct {
	rainchecks *service.RaincheckService
	logger     *slog.Logger
}

// NewRaincheckHandler creates a new raincheck handler.
func NewRaincheckHandler(rainchecks *service.RaincheckService, logger *slog.Logger) *RaincheckHandler {
	return &RaincheckHandler{rainchecks: rainchecks, logger: logger}
}

// Routes mounts the raincheck endpoints.
func (h *RaincheckHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{raincheckID}", h.Get)
	r.Post("/", h.Issue)
}

// List returns all rainchecks.
func (h *RaincheckHandler) List(w http.ResponseWriter, r *http.Request) {
	rainchecks, err := h.rainchecks.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rainchecks})
}

// Get returns one raincheck.
func (h *RaincheckHandler) Get(w http.ResponseWriter, r *http.Request) {
	raincheckID := chi.URLParam(r, "raincheckID")

	rc, err := h.rainchecks.Get(r.Context(), raincheckID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rc})
}

// Issue creates a raincheck.
func (h *RaincheckHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var input service.RaincheckInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rc, err := h.rainchecks.Issue(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rc})
}
