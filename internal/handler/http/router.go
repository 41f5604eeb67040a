package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/service"
	"github.com/utafrali/accounts/pkg/health"
	"github.com/utafrali/accounts/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "accounts"

// Probe, scrape and profiling traffic is neither traced nor counted.
var operationalPrefixes = []string{"/health/", "/metrics", "/debug/"}

// RouterConfig holds the transport settings that come from configuration.
type RouterConfig struct {
	CORS       middleware.CORSConfig
	PprofCIDRs []string
}

// NewRouter creates a chi router with all accounts routes registered.
func NewRouter(
	addressService *service.AddressService,
	userService *service.UserService,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName, operationalPrefixes...))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName, operationalPrefixes...))

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	addressHandler := NewAddressHandler(addressService, logger)
	userHandler := NewUserHandler(userService, addressService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(validateToken))
		r.Use(ContentTypeJSON)

		r.Route("/addresses", func(r chi.Router) {
			r.Post("/", addressHandler.Create)
			r.With(middleware.CacheControl(middleware.CachePrivateShort)).Get("/", addressHandler.ListAll)
			r.Post("/bulk-delete", addressHandler.BulkDelete)

			r.Get("/{id}", addressHandler.Get)
			r.Put("/{id}", addressHandler.Update)
			r.Delete("/{id}", addressHandler.Delete)
			r.Post("/{id}/default", addressHandler.SetDefault)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(
				middleware.RequireRole(domain.RoleAdmin),
				middleware.CacheControl(middleware.CachePrivateShort),
			).Get("/", userHandler.List)

			r.With(middleware.CacheControl(middleware.CacheNoStore)).Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
			r.With(middleware.CacheControl(middleware.CachePrivateShort)).Get("/{id}/addresses", userHandler.ListAddresses)
		})
	})

	return r
}
