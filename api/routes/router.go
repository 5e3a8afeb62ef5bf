package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/courierdesk-backend/api/controllers"
	"github.com/angelmondragon/courierdesk-backend/api/middleware"
	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	"github.com/angelmondragon/courierdesk-backend/internal/notifications"
	"github.com/angelmondragon/courierdesk-backend/internal/orders"
	"github.com/angelmondragon/courierdesk-backend/pkg/config"
	"github.com/angelmondragon/courierdesk-backend/pkg/db"
	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/redis"
)

// RedisStore is the Redis surface the router needs: idempotency records and
// a readiness ping.
type RedisStore interface {
	redis.IdempotencyStore
	redis.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore RedisStore,
	gatherer prometheus.Gatherer,
	ordersSvc orders.Service,
	ledgerSvc ledger.Service,
	notificationsSvc notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{}
	if dbP != nil {
		deps["database"] = dbP
	}
	var idemStore redis.IdempotencyStore
	if redisStore != nil {
		deps["redis"] = redisStore
		idemStore = redisStore
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if cfg.Metrics.Enabled && gatherer != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/admin/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.MemberRoleAdmin, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Redis.IdemTTL, logg))

		r.Get("/{orderId}", controllers.AdminOrderGet(ordersSvc, logg))
		r.Get("/{orderId}/ledger", controllers.AdminOrderLedger(ledgerSvc, logg))
		r.Post("/{orderId}/status", controllers.AdminOrderStatus(ordersSvc, cfg.Fulfillment, logg))
		r.Post("/{orderId}/assign", controllers.AdminOrderAssign(ordersSvc, cfg.Fulfillment, logg))
		r.Post("/{orderId}/reschedule", controllers.AdminOrderReschedule(ordersSvc, cfg.Fulfillment, logg))
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", controllers.ListNotifications(notificationsSvc, logg))
		r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsSvc, logg))
		r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsSvc, logg))
	})

	return r
}
