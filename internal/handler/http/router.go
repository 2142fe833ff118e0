package http

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/partsunlimited/storefront/pkg/health"
	"github.com/partsunlimited/storefront/pkg/middleware"
)

// RouterConfig carries everything the router needs to assemble the API.
type RouterConfig struct {
	Cart       *CartHandler
	Checkout   *CheckoutHandler
	Catalog    *CatalogHandler
	Orders     *OrderHandler
	Rainchecks *RaincheckHandler
	Health     *health.Handler
	Logger     *slog.Logger
	// SessionTTL bounds the Session cookie lifetime.
	SessionTTL time.Duration
}

// NewRouter assembles the storefront HTTP API.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", cfg.Health.LivenessHandler())
	r.Get("/readyz", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate)
		r.Use(CartSession(cfg.SessionTTL))

		r.Route("/catalog", cfg.Catalog.Routes)
		r.Route("/cart", cfg.Cart.Routes)

		r.Route("/checkout", func(r chi.Router) {
			r.Use(RequireUser)
			cfg.Checkout.Routes(r)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(RequireUser)
			cfg.Orders.Routes(r)
		})

		r.Route("/rainchecks", cfg.Rainchecks.Routes)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireUser)
			r.Use(RequireAdmin)
			cfg.Catalog.AdminRoutes(r)
		})
	})

	return r
}
