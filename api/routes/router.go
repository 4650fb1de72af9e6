package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gestrans/gestrans-backend/api/controllers"
	"github.com/gestrans/gestrans-backend/api/middleware"
	"github.com/gestrans/gestrans-backend/internal/carriers"
	"github.com/gestrans/gestrans-backend/pkg/config"
	"github.com/gestrans/gestrans-backend/pkg/logger"
	pkgredis "github.com/gestrans/gestrans-backend/pkg/redis"
)

// Deps are the collaborators the router wires into handlers. Idempotency and
// Redis are optional; Gatherer defaults to the prometheus default registry.
type Deps struct {
	Carriers    carriers.Service
	Store       controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"store": deps.Store,
			"redis": deps.Redis,
		}))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/carriers", func(r chi.Router) {
		if cfg.JWT.Enabled() {
			r.Use(middleware.Auth(cfg.JWT, logg))
		}

		r.Get("/", controllers.CarrierList(deps.Carriers, logg))
		r.Get("/options", controllers.CarrierOptions())
		r.Get("/{carrierId}", controllers.CarrierGet(deps.Carriers, logg))

		r.Group(func(r chi.Router) {
			if cfg.JWT.Enabled() {
				r.Use(middleware.RequireWriter(logg))
			}
			r.Use(middleware.Idempotency(deps.Idempotency, logg))

			r.Post("/", controllers.CarrierCreate(deps.Carriers, logg))
			r.Put("/{carrierId}", controllers.CarrierUpdate(deps.Carriers, logg))
			r.Patch("/{carrierId}", controllers.CarrierPatch(deps.Carriers, logg))
			r.Post("/{carrierId}/deactivate", controllers.CarrierDeactivate(deps.Carriers, logg))
			r.Delete("/{carrierId}", controllers.CarrierDelete(deps.Carriers, logg))
		})
	})

	return r
}
