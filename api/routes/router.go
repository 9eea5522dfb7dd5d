package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/payflow-backend/api/controllers"
	"github.com/angelmondragon/payflow-backend/api/middleware"
	"github.com/angelmondragon/payflow-backend/internal/ledger"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/internal/platform"
	"github.com/angelmondragon/payflow-backend/internal/profiles"
	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
	"github.com/angelmondragon/payflow-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Payments payments.Service
	Platform platform.Service
	Ledger   ledger.Service
	Profiles profiles.Service
	Metrics  prometheus.Gatherer
}

// NewRouter assembles the API route tree.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	mutationPolicy := middleware.NewRateLimitPolicy("payments", cfg.RateLimit.Window, cfg.RateLimit.MutationLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	if !cfg.App.IsProd() {
		r.Post("/api/dev/v1/token", controllers.DevTokenMint(cfg.JWT, logg))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if p.Redis != nil {
			r.Use(middleware.Idempotency(p.Redis, logg))
			r.Use(middleware.RateLimit(mutationPolicy, p.Redis, logg))
		}

		r.Route("/payments", func(r chi.Router) {
			r.Post("/instant", controllers.PaymentInstant(p.Payments, logg))
			r.Route("/requests", func(r chi.Router) {
				r.Post("/", controllers.PaymentRequestCreate(p.Payments, logg))
				r.Get("/{paymentId}", controllers.PaymentRequestGet(p.Payments, logg))
				r.Post("/{paymentId}/complete", controllers.PaymentRequestComplete(p.Payments, logg))
				r.Post("/{paymentId}/cancel", controllers.PaymentRequestCancel(p.Payments, logg))
			})
		})

		r.Route("/escrows", func(r chi.Router) {
			r.Post("/", controllers.EscrowCreate(p.Payments, logg))
			r.Post("/{paymentId}/release", controllers.EscrowRelease(p.Payments, logg))
			r.Post("/{paymentId}/dispute", controllers.EscrowDispute(p.Payments, logg))
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", controllers.ScheduleCreate(p.Payments, logg))
			r.Get("/{scheduleId}", controllers.ScheduleGet(p.Payments, logg))
			r.Post("/{scheduleId}/execute", controllers.ScheduleExecute(p.Payments, logg))
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", controllers.GroupCreate(p.Payments, logg))
			r.Get("/{groupId}", controllers.GroupGet(p.Payments, logg))
			r.Post("/{groupId}/pay", controllers.GroupPayShare(p.Payments, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(p.Ledger, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(p.Ledger, logg))
		})

		r.Get("/profiles/{accountId}", controllers.ProfileGet(p.Profiles, logg))
	})

	r.Route("/api/admin/v1/platform", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Put("/fee", controllers.AdminUpdateFee(p.Platform, logg))
		r.Put("/limits", controllers.AdminUpdateLimits(p.Platform, logg))
		r.Post("/pause", controllers.AdminPause(p.Platform, logg))
		r.Post("/unpause", controllers.AdminUnpause(p.Platform, logg))
	})

	return r
}
