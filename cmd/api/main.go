package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopcart/internal/backend"
	"shopcart/internal/cart"
	"shopcart/internal/config"
	"shopcart/internal/database"
	"shopcart/internal/handler"
	"shopcart/internal/media"
	"shopcart/internal/metrics"
	"shopcart/internal/model"
	"shopcart/internal/repository"
	"shopcart/internal/router"
	"shopcart/internal/service"
	"shopcart/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting shopcart gateway")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	api := backend.New(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout(),
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
		Metrics:   m,
	}, logger)

	// Sessions live in redis when enabled so they survive restarts and are
	// shared between replicas.
	var store session.Store
	if cfg.Redis.Enabled {
		client, err := session.NewRedisClient(ctx, session.RedisConfig{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		store = session.NewRedisStore(client, "")
		logger.Info().Str("address", cfg.Redis.Address()).Msg("using redis session store")
	} else {
		store = session.NewMemoryStore()
		logger.Info().Msg("using in-memory session store (redis disabled)")
	}
	sessions := session.NewManager(store, cfg.Session.TTL(), cfg.Session.JWTSecret, logger)

	mediaStore, localMedia, err := newMediaStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	attempts := repository.NewPaymentAttemptRepository(pool, logger)
	if err := attempts.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare payment ledger: %w", err)
	}

	// Initialize services
	policy := model.TotalsPolicy{
		FreeShippingThreshold: decimal.NewFromFloat(cfg.Checkout.FreeShippingThreshold),
		ShippingFee:           decimal.NewFromFloat(cfg.Checkout.ShippingFee),
		TaxRate:               decimal.NewFromFloat(cfg.Checkout.TaxRate),
	}
	accountService := service.NewAccountService(api, sessions, logger)
	catalogService := service.NewCatalogService(api, logger)
	cartService := service.NewCartService(api, cart.NewCache(cfg.Cart.TTL()), policy, logger)
	poller := service.NewPaymentPoller(ctx, api, api, attempts, sessions, cartService, cfg.Payment.PollInterval(), m, logger)
	checkoutService := service.NewCheckoutService(api, api, api, attempts, cartService, poller, service.CheckoutConfig{
		Policy:         policy,
		Currency:       cfg.Payment.Currency,
		PaymentTimeout: cfg.Payment.Timeout(),
	}, m, logger)
	merchantService := service.NewMerchantService(api, mediaStore, cfg.Media.MaxImages, logger)
	dashboardService := service.NewDashboardService(api, logger)

	resumed, err := poller.Resume(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resume pending QR payments")
	} else if resumed > 0 {
		logger.Info().Int("count", resumed).Msg("resumed pending QR payments")
	}

	// Initialize HTTP handlers
	resp := handler.NewResponder(sessions, cfg.Session.CookieName, logger)
	health := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return database.Check(ctx, pool) },
	}, logger)
	handlers := router.Handlers{
		Account:   handler.NewAccountHandler(accountService, resp, logger),
		Catalog:   handler.NewCatalogHandler(catalogService, resp, logger),
		Cart:      handler.NewCartHandler(cartService, resp, logger),
		Checkout:  handler.NewCheckoutHandler(checkoutService, resp, logger),
		Merchant:  handler.NewMerchantHandler(merchantService, resp, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, resp, logger),
		Health:    health,
	}

	// Initialize router
	mux := router.New(handlers, router.Options{
		Sessions:       sessions,
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Media:          localMedia.Handler(),
		MediaPath:      cfg.Media.BaseURL,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("backend", cfg.Backend.BaseURL).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		// Pending attempts stay PENDING in the ledger and resume on the
		// next start.
		if err := poller.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("payment pollers did not stop in time")
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newMediaStore builds the product image store: S3 with local fallback when
// S3 is enabled, local disk otherwise. The local store is always returned
// so its files can be served.
func newMediaStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (media.Store, *media.LocalStore, error) {
	local, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.BaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize media directory: %w", err)
	}

	if !cfg.S3.Enabled {
		logger.Info().Str("dir", cfg.Media.Dir).Msg("using local disk for product images (S3 disabled)")
		return local, local, nil
	}

	s3Store, err := media.NewS3Store(ctx, media.S3Config{
		Bucket:        cfg.S3.Bucket,
		Region:        cfg.S3.Region,
		Prefix:        cfg.S3.Prefix,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 store, falling back to local disk only")
		return local, local, nil
	}
	return media.NewFallbackStore(s3Store, local, true, logger), local, nil
}
