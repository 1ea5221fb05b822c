package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ofcourt/storefront-backend/api/routes"
	"github.com/ofcourt/storefront-backend/internal/auth"
	cartsvc "github.com/ofcourt/storefront-backend/internal/cart"
	checkoutsvc "github.com/ofcourt/storefront-backend/internal/checkout"
	orderssvc "github.com/ofcourt/storefront-backend/internal/orders"
	"github.com/ofcourt/storefront-backend/internal/receipts"
	"github.com/ofcourt/storefront-backend/internal/stores"
	"github.com/ofcourt/storefront-backend/pkg/config"
	"github.com/ofcourt/storefront-backend/pkg/db"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/metrics"
	"github.com/ofcourt/storefront-backend/pkg/migrate"
	"github.com/ofcourt/storefront-backend/pkg/paypal"
	"github.com/ofcourt/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	workerMetrics := metrics.NewWorkerMetrics(registry)

	storeService, err := stores.NewService(stores.NewRepository(dbClient.DB()), cfg.Store.Slug)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.ServiceParams{
		Records:  cartsvc.NewRecordRepository(dbClient.DB()),
		KV:       redisClient,
		GuestTTL: cfg.Cart.GuestTTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderService, err := orderssvc.NewService(orderssvc.NewRepository(dbClient.DB()), storeService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	receiptStore, err := receipts.NewStore(redisClient, cfg.Cart.ReceiptTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create receipt store", err)
		os.Exit(1)
	}

	checkoutParams := checkoutsvc.OrchestratorParams{
		Orders:            orderService,
		Receipts:          receiptStore,
		Carts:             cartService,
		ShippingCostCents: cfg.Checkout.ShippingCostCents,
		Currency:          cfg.Checkout.Currency,
		Logger:            logg,
	}
	if cfg.PayPal.Enabled() {
		provider, err := paypal.NewClient(cfg.PayPal, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create paypal client", err)
			os.Exit(1)
		}
		checkoutParams.Provider = provider
	} else {
		logg.Warn(context.Background(), "paypal credentials absent, provider checkout disabled")
	}

	checkoutService, err := checkoutsvc.NewOrchestrator(checkoutParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout orchestrator", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authStream := auth.NewStream()
	defer authStream.Close()

	syncWorker := cartsvc.NewSyncWorker(authStream, cartService, workerMetrics, logg)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		syncWorker.Run(ctx)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			AuthStream:   authStream,
			Carts:        cartService,
			Checkout:     checkoutService,
			Orders:       orderService,
			Receipts:     receiptStore,
			HTTPMetrics:  httpMetrics,
			PromRegistry: registry,
		}),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
		<-workerDone
	}
}
