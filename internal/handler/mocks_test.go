package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"shopcart/internal/middleware"
	"shopcart/internal/model"
	"shopcart/internal/service"
	"shopcart/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// MockAccountService is a mock implementation of AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, req model.LoginRequest) (*session.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockAccountService) Logout(ctx context.Context, sess *session.Session) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *MockAccountService) Profile(ctx context.Context, sess *session.Session) (*model.User, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, sess *session.Session, update model.ProfileUpdate) (*model.User, error) {
	args := m.Called(ctx, sess, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAccountService) ChangePassword(ctx context.Context, sess *session.Session, req model.ChangePasswordRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

func (m *MockAccountService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (*model.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageResponse), args.Error(1)
}

func (m *MockAccountService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (*model.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageResponse), args.Error(1)
}

func (m *MockAccountService) Orders(ctx context.Context, sess *session.Session, page, pageSize int) (*model.OrderPage, error) {
	args := m.Called(ctx, sess, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, token string, query model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, token, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, token string, id int) (*model.Product, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context, token string) ([]model.Category, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) view(args mock.Arguments) (*model.CartView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, sess *session.Session) (*model.CartView, error) {
	return m.view(m.Called(ctx, sess))
}

func (m *MockCartService) AddOrUpdate(ctx context.Context, sess *session.Session, productID, quantity int) (*model.CartView, error) {
	return m.view(m.Called(ctx, sess, productID, quantity))
}

func (m *MockCartService) SetQuantity(ctx context.Context, sess *session.Session, cartItemID, quantity int) (*model.CartView, error) {
	return m.view(m.Called(ctx, sess, cartItemID, quantity))
}

func (m *MockCartService) Increment(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error) {
	return m.view(m.Called(ctx, sess, cartItemID, amount))
}

func (m *MockCartService) Decrement(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error) {
	return m.view(m.Called(ctx, sess, cartItemID, amount))
}

func (m *MockCartService) Remove(ctx context.Context, sess *session.Session, cartItemID int) (*model.CartView, error) {
	return m.view(m.Called(ctx, sess, cartItemID))
}

func (m *MockCartService) Clear(ctx context.Context, sess *session.Session) error {
	return m.Called(ctx, sess).Error(0)
}

func (m *MockCartService) RemoveItems(ctx context.Context, sess *session.Session, cartItemIDs []int64) error {
	return m.Called(ctx, sess, cartItemIDs).Error(0)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, sess *session.Session, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

func (m *MockCheckoutService) ConfirmCard(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentStatusView, error) {
	args := m.Called(ctx, sess, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentStatusView), args.Error(1)
}

func (m *MockCheckoutService) PaymentStatus(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentStatusView, error) {
	args := m.Called(ctx, sess, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentStatusView), args.Error(1)
}

// MockMerchantService is a mock implementation of MerchantService.
type MockMerchantService struct {
	mock.Mock
}

func (m *MockMerchantService) product(args mock.Arguments) (*model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockMerchantService) category(args mock.Arguments) (*model.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockMerchantService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockMerchantService) ListProducts(ctx context.Context, sess *session.Session, query model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, sess, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockMerchantService) GetProduct(ctx context.Context, sess *session.Session, id int) (*model.Product, error) {
	return m.product(m.Called(ctx, sess, id))
}

// CreateProduct drains the uploads so tests can assert on their content.
func (m *MockMerchantService) CreateProduct(ctx context.Context, sess *session.Session, input model.ProductInput, images []service.ImageUpload) (*model.Product, error) {
	return m.product(m.Called(ctx, sess, input, drain(images)))
}

func (m *MockMerchantService) UpdateProduct(ctx context.Context, sess *session.Session, id int, update model.ProductUpdate, images []service.ImageUpload) (*model.Product, error) {
	return m.product(m.Called(ctx, sess, id, update, drain(images)))
}

func (m *MockMerchantService) DeleteProduct(ctx context.Context, sess *session.Session, id int) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *MockMerchantService) UpdateStock(ctx context.Context, sess *session.Session, id, stock int) error {
	return m.Called(ctx, sess, id, stock).Error(0)
}

func (m *MockMerchantService) ListCategories(ctx context.Context, sess *session.Session) ([]model.Category, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockMerchantService) GetCategory(ctx context.Context, sess *session.Session, id int) (*model.Category, error) {
	return m.category(m.Called(ctx, sess, id))
}

func (m *MockMerchantService) CreateCategory(ctx context.Context, sess *session.Session, input model.CategoryInput) (*model.Category, error) {
	return m.category(m.Called(ctx, sess, input))
}

func (m *MockMerchantService) UpdateCategory(ctx context.Context, sess *session.Session, id int, input model.CategoryInput) (*model.Category, error) {
	return m.category(m.Called(ctx, sess, id, input))
}

func (m *MockMerchantService) DeleteCategory(ctx context.Context, sess *session.Session, id int) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *MockMerchantService) ListOrders(ctx context.Context, sess *session.Session, query model.OrderQuery) (*model.OrderPage, error) {
	args := m.Called(ctx, sess, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockMerchantService) GetOrder(ctx context.Context, sess *session.Session, id int) (*model.Order, error) {
	return m.order(m.Called(ctx, sess, id))
}

func (m *MockMerchantService) UpdateOrderStatus(ctx context.Context, sess *session.Session, id int, status model.OrderStatus) (*model.Order, error) {
	return m.order(m.Called(ctx, sess, id, status))
}

func (m *MockMerchantService) SoftDeleteOrder(ctx context.Context, sess *session.Session, id int) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *MockMerchantService) RestoreOrder(ctx context.Context, sess *session.Session, id int) error {
	return m.Called(ctx, sess, id).Error(0)
}

// MockDashboardService is a mock implementation of DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Revenue(ctx context.Context, sess *session.Session, mode string) (*model.RevenueChart, error) {
	args := m.Called(ctx, sess, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RevenueChart), args.Error(1)
}

func (m *MockDashboardService) CategorySales(ctx context.Context, sess *session.Session, period string) (*model.CategorySalesView, error) {
	args := m.Called(ctx, sess, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CategorySalesView), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context, sess *session.Session, period, chartMode string) (*model.DashboardOverview, error) {
	args := m.Called(ctx, sess, period, chartMode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardOverview), args.Error(1)
}

// drainedImage is an upload read into memory for assertions.
type drainedImage struct {
	Name        string
	ContentType string
	Body        string
}

func drain(images []service.ImageUpload) []drainedImage {
	out := make([]drainedImage, 0, len(images))
	for _, img := range images {
		data, _ := io.ReadAll(img.Body)
		out = append(out, drainedImage{Name: img.Name, ContentType: img.ContentType, Body: string(data)})
	}
	return out
}

// fakeEnder records destroyed sessions.
type fakeEnder struct {
	mu        sync.Mutex
	destroyed []string
}

func (f *fakeEnder) Destroy(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, id)
	return nil
}

func (f *fakeEnder) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.destroyed...)
}

const testCookie = "shopcart_session"

func shopper() *session.Session {
	return &session.Session{
		ID:    "sess-1",
		Token: "token-1",
		User:  model.User{ID: 7, Name: "Somchai", Email: "somchai@example.com", Role: model.RoleUser},
		Role:  model.RoleUser,
	}
}

func newResponder(ender *fakeEnder) *Responder {
	return NewResponder(ender, testCookie, zerolog.Nop())
}

// serve routes req through a chi router holding pattern so URL parameters
// resolve, attaching sess when it is not nil.
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request, sess *session.Session) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	if sess != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), sess))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
