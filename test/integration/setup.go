package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shopcart/internal/backend"
	"shopcart/internal/cart"
	"shopcart/internal/database"
	"shopcart/internal/handler"
	"shopcart/internal/media"
	"shopcart/internal/metrics"
	"shopcart/internal/model"
	"shopcart/internal/repository"
	"shopcart/internal/router"
	"shopcart/internal/service"
	"shopcart/internal/session"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the payment ledger
// schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.Connect(ctx, connStr, database.DefaultPoolOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := repository.NewPaymentAttemptRepository(pool, zerolog.Nop()).EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes every payment attempt.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), "DELETE FROM payment_attempts"); err != nil {
		t.Logf("failed to clean payment_attempts: %v", err)
	}
}

// Gateway is a fully wired gateway talking to a fake backend.
type Gateway struct {
	Handler  http.Handler
	Sessions *session.Manager
	Poller   *service.PaymentPoller
	Attempts repository.PaymentAttemptRepository
	Metrics  *metrics.Metrics
}

const (
	cookieName   = "shopcart_session"
	pollInterval = 20 * time.Millisecond
)

// SetupGateway wires the gateway the way cmd/api does, with an in-memory
// session store, local media under a temp dir and a fast poll interval.
func SetupGateway(t *testing.T, backendURL string, pool *pgxpool.Pool) *Gateway {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	logger := zerolog.Nop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	api := backend.New(backend.Options{BaseURL: backendURL, Timeout: 5 * time.Second, Metrics: m}, logger)
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, "", logger)

	local, err := media.NewLocalStore(t.TempDir(), "/media", logger)
	if err != nil {
		t.Fatalf("failed to create media store: %v", err)
	}

	attempts := repository.NewPaymentAttemptRepository(pool, logger)
	policy := model.DefaultTotalsPolicy()

	cartService := service.NewCartService(api, cart.NewCache(time.Minute), policy, logger)
	poller := service.NewPaymentPoller(ctx, api, api, attempts, sessions, cartService, pollInterval, m, logger)
	checkoutService := service.NewCheckoutService(api, api, api, attempts, cartService, poller, service.CheckoutConfig{
		Policy:         policy,
		Currency:       "thb",
		PaymentTimeout: 15 * time.Minute,
	}, m, logger)

	resp := handler.NewResponder(sessions, cookieName, logger)
	health := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return database.Check(ctx, pool) },
	}, logger)
	handlers := router.Handlers{
		Account:   handler.NewAccountHandler(service.NewAccountService(api, sessions, logger), resp, logger),
		Catalog:   handler.NewCatalogHandler(service.NewCatalogService(api, logger), resp, logger),
		Cart:      handler.NewCartHandler(cartService, resp, logger),
		Checkout:  handler.NewCheckoutHandler(checkoutService, resp, logger),
		Merchant:  handler.NewMerchantHandler(service.NewMerchantService(api, local, 8, logger), resp, logger),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(api, logger), resp, logger),
		Health:    health,
	}

	mux := router.New(handlers, router.Options{
		Sessions:       sessions,
		CookieName:     cookieName,
		AllowedOrigins: []string{"https://shop.example"},
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Media:          local.Handler(),
		MediaPath:      "/media",
	}, logger)

	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = poller.Shutdown(shutdownCtx)
		cancel()
	})

	return &Gateway{
		Handler:  mux,
		Sessions: sessions,
		Poller:   poller,
		Attempts: attempts,
		Metrics:  m,
	}
}
