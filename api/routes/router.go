package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/crawlops-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/crawlops-backend/api/controllers/orders"
	"github.com/angelmondragon/crawlops-backend/api/middleware"
	"github.com/angelmondragon/crawlops-backend/internal/manifest"
	"github.com/angelmondragon/crawlops-backend/internal/orders"
	"github.com/angelmondragon/crawlops-backend/pkg/config"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
)

// Deps carries everything the router hands to controllers. Redis is nil when
// the manifest cache is disabled; Gatherer defaults to the prometheus default registry.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Gatherer prometheus.Gatherer
	Manifest manifest.Service
	Orders   orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/manifest", controllers.Manifest(deps.Manifest, logg))
		r.Delete("/manifest/cache", controllers.InvalidateManifest(deps.Manifest, logg))
		r.Post("/orders/preview", ordercontrollers.Preview(deps.Orders, logg))
		r.Get("/bookings/{platform}/{bookingId}/order", ordercontrollers.BookingOrder(deps.Orders, logg))
	})

	return r
}
