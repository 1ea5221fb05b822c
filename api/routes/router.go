package routes

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ofcourt/storefront-backend/api/controllers"
	"github.com/ofcourt/storefront-backend/api/middleware"
	"github.com/ofcourt/storefront-backend/internal/auth"
	cartsvc "github.com/ofcourt/storefront-backend/internal/cart"
	checkoutsvc "github.com/ofcourt/storefront-backend/internal/checkout"
	orderssvc "github.com/ofcourt/storefront-backend/internal/orders"
	"github.com/ofcourt/storefront-backend/internal/receipts"
	"github.com/ofcourt/storefront-backend/pkg/config"
	"github.com/ofcourt/storefront-backend/pkg/db"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/metrics"
	"github.com/ofcourt/storefront-backend/pkg/redis"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *db.Client
	Redis        *redis.Client
	AuthStream   *auth.Stream
	Carts        *cartsvc.Service
	Checkout     *checkoutsvc.Orchestrator
	Orders       *orderssvc.Service
	Receipts     *receipts.Store
	HTTPMetrics  *metrics.HTTPMetrics
	PromRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))

		// shopper-scoped surface: works for users and device-identified guests
		r.Group(func(r chi.Router) {
			r.Use(middleware.Subject(logg))

			r.Route("/v1/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
				r.Delete("/items/{cartId}", controllers.CartRemoveItem(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
			})

			r.Get("/v1/receipt", controllers.ReceiptLast(deps.Receipts, logg))

			r.Route("/paypal", func(r chi.Router) {
				r.Post("/create-order", controllers.PayPalCreateOrder(deps.Checkout, logg))
				r.Post("/capture-order", controllers.PayPalCaptureOrder(deps.Checkout, logg))
			})
			r.Post("/checkout/card", controllers.CheckoutCard(deps.Checkout, logg))
		})

		r.Post("/create-order", controllers.OrdersCreate(deps.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/v1/auth/session", controllers.SessionEstablish(deps.AuthStream, logg))
			r.Get("/v1/orders", controllers.OrdersHistory(deps.Orders, logg))
			r.Get("/v1/orders/{orderId}", controllers.OrdersDetail(deps.Orders, logg))
		})
	})

	return r
}
