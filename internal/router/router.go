package router

import (
	"net/http"
	"strings"

	"shopcart/internal/handler"
	"shopcart/internal/metrics"
	"shopcart/internal/middleware"
	"shopcart/internal/model"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Account   *handler.AccountHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Merchant  *handler.MerchantHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// Options configures the router's middleware and auxiliary endpoints.
type Options struct {
	Sessions       middleware.SessionResolver
	CookieName     string
	AllowedOrigins []string
	Metrics        *metrics.Metrics

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	// Media serves locally stored images under MediaPath when it is a path
	// on this host.
	Media     http.Handler
	MediaPath string
}

// New creates the HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> RealIP -> Recovery -> Logging -> Metrics -> CORS -> Session
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.Get("/health", h.Health.Health)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
	if opts.Media != nil && strings.HasPrefix(opts.MediaPath, "/") {
		prefix := "/" + strings.Trim(opts.MediaPath, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, opts.Media))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(opts.Sessions, opts.CookieName, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Account.Register)
			r.Post("/login", h.Account.Login)
			r.Post("/logout", h.Account.Logout)
			r.Post("/forgot-password", h.Account.ForgotPassword)
			r.Patch("/reset-password", h.Account.ResetPassword)
		})

		r.Get("/products", h.Catalog.ListProducts)
		r.Get("/products/{id}", h.Catalog.GetProduct)
		r.Get("/categories", h.Catalog.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.Account.Profile)
				r.Patch("/", h.Account.UpdateProfile)
				r.Patch("/password", h.Account.ChangePassword)
				r.Get("/orders", h.Account.Orders)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.Get)
				r.Delete("/", h.Cart.Clear)
				r.Post("/items", h.Cart.AddItem)
				r.Patch("/items/{id}", h.Cart.SetQuantity)
				r.Delete("/items/{id}", h.Cart.Remove)
				r.Post("/items/{id}/increment", h.Cart.Increment)
				r.Post("/items/{id}/decrement", h.Cart.Decrement)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.PlaceOrder)
				r.Get("/payments/{paymentID}", h.Checkout.PaymentStatus)
				r.Post("/payments/{paymentID}/confirm", h.Checkout.ConfirmCard)
			})
		})

		r.Route("/merchant", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleMerchant, model.RoleAdmin))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Merchant.ListProducts)
				r.Post("/", h.Merchant.CreateProduct)
				r.Get("/{id}", h.Merchant.GetProduct)
				r.Put("/{id}", h.Merchant.UpdateProduct)
				r.Delete("/{id}", h.Merchant.DeleteProduct)
				r.Patch("/{id}/stock", h.Merchant.UpdateStock)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Merchant.ListCategories)
				r.Post("/", h.Merchant.CreateCategory)
				r.Get("/{id}", h.Merchant.GetCategory)
				r.Put("/{id}", h.Merchant.UpdateCategory)
				r.Delete("/{id}", h.Merchant.DeleteCategory)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Merchant.ListOrders)
				r.Get("/{id}", h.Merchant.GetOrder)
				r.Patch("/{id}/status", h.Merchant.UpdateOrderStatus)
				r.Delete("/{id}", h.Merchant.SoftDeleteOrder)
				r.Post("/{id}/restore", h.Merchant.RestoreOrder)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/revenue", h.Dashboard.Revenue)
				r.Get("/category-sales", h.Dashboard.CategorySales)
				r.Get("/overview", h.Dashboard.Overview)
			})
		})
	})

	return r
}
