package service

import (
	"context"
	"io"

	"shopcart/internal/model"
	"shopcart/internal/session"
)

// AccountService covers registration, login and the shopper's profile.
type AccountService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session) error
	Profile(ctx context.Context, sess *session.Session) (*model.User, error)
	UpdateProfile(ctx context.Context, sess *session.Session, update model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, sess *session.Session, req model.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (*model.MessageResponse, error)
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (*model.MessageResponse, error)
	Orders(ctx context.Context, sess *session.Session, page, pageSize int) (*model.OrderPage, error)
}

// CatalogService serves the public catalogue. token may be empty.
type CatalogService interface {
	ListProducts(ctx context.Context, token string, query model.ProductQuery) (*model.ProductPage, error)
	GetProduct(ctx context.Context, token string, id int) (*model.Product, error)
	ListCategories(ctx context.Context, token string) ([]model.Category, error)
}

// CartService manages the shopper's cart.
type CartService interface {
	// Get returns the cart with totals, served from cache when fresh.
	Get(ctx context.Context, sess *session.Session) (*model.CartView, error)

	// AddOrUpdate adds quantity of a product, incrementing the existing line
	// for that product when there is one.
	AddOrUpdate(ctx context.Context, sess *session.Session, productID, quantity int) (*model.CartView, error)

	SetQuantity(ctx context.Context, sess *session.Session, cartItemID, quantity int) (*model.CartView, error)
	Increment(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error)
	Decrement(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error)
	Remove(ctx context.Context, sess *session.Session, cartItemID int) (*model.CartView, error)
	Clear(ctx context.Context, sess *session.Session) error

	// RemoveItems deletes purchased lines. Lines already gone are ignored.
	RemoveItems(ctx context.Context, sess *session.Session, cartItemIDs []int64) error
}

// CheckoutService turns cart lines into an order and a payment.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, sess *session.Session, req model.CheckoutRequest) (*model.CheckoutResult, error)
	ConfirmCard(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentStatusView, error)
	PaymentStatus(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentStatusView, error)
}

// ImageUpload is an image submitted with a product form.
type ImageUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// MerchantService is the store management surface.
type MerchantService interface {
	ListProducts(ctx context.Context, sess *session.Session, query model.ProductQuery) (*model.ProductPage, error)
	GetProduct(ctx context.Context, sess *session.Session, id int) (*model.Product, error)
	CreateProduct(ctx context.Context, sess *session.Session, input model.ProductInput, images []ImageUpload) (*model.Product, error)
	UpdateProduct(ctx context.Context, sess *session.Session, id int, update model.ProductUpdate, images []ImageUpload) (*model.Product, error)
	DeleteProduct(ctx context.Context, sess *session.Session, id int) error
	UpdateStock(ctx context.Context, sess *session.Session, id, stock int) error

	ListCategories(ctx context.Context, sess *session.Session) ([]model.Category, error)
	GetCategory(ctx context.Context, sess *session.Session, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, sess *session.Session, input model.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, sess *session.Session, id int, input model.CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, sess *session.Session, id int) error

	ListOrders(ctx context.Context, sess *session.Session, query model.OrderQuery) (*model.OrderPage, error)
	GetOrder(ctx context.Context, sess *session.Session, id int) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, sess *session.Session, id int, status model.OrderStatus) (*model.Order, error)
	SoftDeleteOrder(ctx context.Context, sess *session.Session, id int) error
	RestoreOrder(ctx context.Context, sess *session.Session, id int) error
}

// DashboardService shapes the merchant analytics.
type DashboardService interface {
	Revenue(ctx context.Context, sess *session.Session, mode string) (*model.RevenueChart, error)
	CategorySales(ctx context.Context, sess *session.Session, period string) (*model.CategorySalesView, error)
	Overview(ctx context.Context, sess *session.Session, period, chartMode string) (*model.DashboardOverview, error)
}
