package service

import (
	"context"

	"shopcart/internal/model"
	"shopcart/internal/session"
)

// The interfaces below are the slices of the backend client each service
// uses. *backend.Client satisfies all of them.

// AuthAPI is the account part of the backend.
type AuthAPI interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (*model.MessageResponse, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*model.MessageResponse, error)
	Profile(ctx context.Context, token string) (*model.User, error)
	UpdateUser(ctx context.Context, token string, userID int, update model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, token string, req model.ChangePasswordRequest) error
	ListUserOrders(ctx context.Context, token string, userID, page, pageSize int) (*model.OrderPage, error)
}

// CatalogAPI is the public catalogue.
type CatalogAPI interface {
	ListProducts(ctx context.Context, token string, query model.ProductQuery) (*model.ProductPage, error)
	GetProduct(ctx context.Context, token string, id int) (*model.Product, error)
	ListCategories(ctx context.Context, token string) ([]model.Category, error)
	GetCategory(ctx context.Context, token string, id int) (*model.Category, error)
}

// CartAPI is the cart.
type CartAPI interface {
	GetCart(ctx context.Context, token string) (*model.Cart, error)
	AddCartItem(ctx context.Context, token string, productID, quantity int) error
	SetCartItemQuantity(ctx context.Context, token string, cartItemID, quantity int) error
	IncrementCartItem(ctx context.Context, token string, cartItemID, amount int) error
	DecrementCartItem(ctx context.Context, token string, cartItemID, amount int) error
	RemoveCartItem(ctx context.Context, token string, cartItemID int) error
	ClearCart(ctx context.Context, token string) error
}

// OrderAPI creates and completes shopper orders.
type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, req model.OrderRequest) (*model.Order, error)
	CompleteOrder(ctx context.Context, token string, orderID int) error
}

// PaymentAPI creates payment intents and reads QR status.
type PaymentAPI interface {
	CreateQRPayment(ctx context.Context, token string, req model.PaymentIntentRequest) (*model.QRPaymentIntent, error)
	CreateCardPayment(ctx context.Context, token string, req model.PaymentIntentRequest) (*model.CardPaymentIntent, error)
	QRPaymentStatus(ctx context.Context, token, paymentID string) (*model.QRStatus, error)
}

// MerchantAPI is the store management part of the backend.
type MerchantAPI interface {
	CatalogAPI
	GetAdminProduct(ctx context.Context, token string, id int) (*model.Product, error)
	CreateAdminProduct(ctx context.Context, token string, input model.ProductInput) (*model.Product, error)
	UpdateAdminProduct(ctx context.Context, token string, id int, update model.ProductUpdate) (*model.Product, error)
	UpdateStock(ctx context.Context, token string, id, stock int) error
	DeleteAdminProduct(ctx context.Context, token string, id int) error
	CreateCategory(ctx context.Context, token string, input model.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, token string, id int, input model.CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, token string, id int) error
	ListAdminOrders(ctx context.Context, token string, query model.OrderQuery) (*model.OrderPage, error)
	GetAdminOrder(ctx context.Context, token string, id int) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, id int, status model.OrderStatus) (*model.Order, error)
	SoftDeleteOrder(ctx context.Context, token string, id int) error
	RestoreOrder(ctx context.Context, token string, id int) error
}

// DashboardAPI is the analytics part of the backend.
type DashboardAPI interface {
	Revenue(ctx context.Context, token, period string) (*model.RevenueReport, error)
	CategorySales(ctx context.Context, token, period string) (*model.CategorySalesReport, error)
	ListAdminOrders(ctx context.Context, token string, query model.OrderQuery) (*model.OrderPage, error)
}

// SessionManager is what the services need from session.Manager.
type SessionManager interface {
	Create(ctx context.Context, token string, user model.User) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	UpdateUser(ctx context.Context, s *session.Session, user model.User) error
	Destroy(ctx context.Context, id string) error
}
