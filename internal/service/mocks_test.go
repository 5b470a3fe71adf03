package service

import (
	"context"
	"io"
	"sync"
	"time"

	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of every backend API slice.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResult), args.Error(1)
}

func (m *MockBackend) ForgotPassword(ctx context.Context, email string) (*model.MessageResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageResponse), args.Error(1)
}

func (m *MockBackend) ResetPassword(ctx context.Context, token, newPassword string) (*model.MessageResponse, error) {
	args := m.Called(ctx, token, newPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MessageResponse), args.Error(1)
}

func (m *MockBackend) Profile(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockBackend) UpdateUser(ctx context.Context, token string, userID int, update model.ProfileUpdate) (*model.User, error) {
	args := m.Called(ctx, token, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockBackend) ChangePassword(ctx context.Context, token string, req model.ChangePasswordRequest) error {
	args := m.Called(ctx, token, req)
	return args.Error(0)
}

func (m *MockBackend) ListUserOrders(ctx context.Context, token string, userID, page, pageSize int) (*model.OrderPage, error) {
	args := m.Called(ctx, token, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockBackend) ListProducts(ctx context.Context, token string, query model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, token, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockBackend) GetProduct(ctx context.Context, token string, id int) (*model.Product, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockBackend) ListCategories(ctx context.Context, token string) ([]model.Category, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockBackend) GetCategory(ctx context.Context, token string, id int) (*model.Category, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockBackend) GetCart(ctx context.Context, token string) (*model.Cart, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so callers cannot mutate the fixture.
	c := *args.Get(0).(*model.Cart)
	c.Items = append([]model.CartItem(nil), c.Items...)
	return &c, args.Error(1)
}

func (m *MockBackend) AddCartItem(ctx context.Context, token string, productID, quantity int) error {
	return m.Called(ctx, token, productID, quantity).Error(0)
}

func (m *MockBackend) SetCartItemQuantity(ctx context.Context, token string, cartItemID, quantity int) error {
	return m.Called(ctx, token, cartItemID, quantity).Error(0)
}

func (m *MockBackend) IncrementCartItem(ctx context.Context, token string, cartItemID, amount int) error {
	return m.Called(ctx, token, cartItemID, amount).Error(0)
}

func (m *MockBackend) DecrementCartItem(ctx context.Context, token string, cartItemID, amount int) error {
	return m.Called(ctx, token, cartItemID, amount).Error(0)
}

func (m *MockBackend) RemoveCartItem(ctx context.Context, token string, cartItemID int) error {
	return m.Called(ctx, token, cartItemID).Error(0)
}

func (m *MockBackend) ClearCart(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockBackend) CreateOrder(ctx context.Context, token string, req model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockBackend) CompleteOrder(ctx context.Context, token string, orderID int) error {
	return m.Called(ctx, token, orderID).Error(0)
}

func (m *MockBackend) CreateQRPayment(ctx context.Context, token string, req model.PaymentIntentRequest) (*model.QRPaymentIntent, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QRPaymentIntent), args.Error(1)
}

func (m *MockBackend) CreateCardPayment(ctx context.Context, token string, req model.PaymentIntentRequest) (*model.CardPaymentIntent, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardPaymentIntent), args.Error(1)
}

func (m *MockBackend) QRPaymentStatus(ctx context.Context, token, paymentID string) (*model.QRStatus, error) {
	args := m.Called(ctx, token, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QRStatus), args.Error(1)
}

func (m *MockBackend) GetAdminProduct(ctx context.Context, token string, id int) (*model.Product, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockBackend) CreateAdminProduct(ctx context.Context, token string, input model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, token, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockBackend) UpdateAdminProduct(ctx context.Context, token string, id int, update model.ProductUpdate) (*model.Product, error) {
	args := m.Called(ctx, token, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockBackend) UpdateStock(ctx context.Context, token string, id, stock int) error {
	return m.Called(ctx, token, id, stock).Error(0)
}

func (m *MockBackend) DeleteAdminProduct(ctx context.Context, token string, id int) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *MockBackend) CreateCategory(ctx context.Context, token string, input model.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, token, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockBackend) UpdateCategory(ctx context.Context, token string, id int, input model.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, token, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockBackend) DeleteCategory(ctx context.Context, token string, id int) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *MockBackend) ListAdminOrders(ctx context.Context, token string, query model.OrderQuery) (*model.OrderPage, error) {
	args := m.Called(ctx, token, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPage), args.Error(1)
}

func (m *MockBackend) GetAdminOrder(ctx context.Context, token string, id int) (*model.Order, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockBackend) UpdateOrderStatus(ctx context.Context, token string, id int, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, token, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockBackend) SoftDeleteOrder(ctx context.Context, token string, id int) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *MockBackend) RestoreOrder(ctx context.Context, token string, id int) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *MockBackend) Revenue(ctx context.Context, token, period string) (*model.RevenueReport, error) {
	args := m.Called(ctx, token, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RevenueReport), args.Error(1)
}

func (m *MockBackend) CategorySales(ctx context.Context, token, period string) (*model.CategorySalesReport, error) {
	args := m.Called(ctx, token, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CategorySalesReport), args.Error(1)
}

// MockMediaStore is a mock implementation of media.Store.
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, body)
	return args.String(0), args.Error(1)
}

// fakeAttempts is an in-memory PaymentAttemptRepository with the same
// PENDING-only transition rule as the database.
type fakeAttempts struct {
	mu       sync.Mutex
	attempts map[string]model.PaymentAttempt
	checks   int
	reopened int
}

func newFakeAttempts(attempts ...model.PaymentAttempt) *fakeAttempts {
	f := &fakeAttempts{attempts: make(map[string]model.PaymentAttempt)}
	for _, a := range attempts {
		f.attempts[a.PaymentID] = a
	}
	return f
}

func (f *fakeAttempts) EnsureSchema(context.Context) error { return nil }

func (f *fakeAttempts) Create(_ context.Context, a *model.PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[a.PaymentID] = *a
	return nil
}

func (f *fakeAttempts) GetByPaymentID(_ context.Context, paymentID string) (*model.PaymentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[paymentID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeAttempts) UpdateStatus(_ context.Context, paymentID string, status model.AttemptStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[paymentID]
	if !ok || a.Status != model.AttemptPending {
		return false, nil
	}
	a.Status = status
	a.UpdatedAt = at
	if status == model.AttemptCompleted {
		a.CompletedAt = &at
	}
	f.attempts[paymentID] = a
	return true, nil
}

func (f *fakeAttempts) Reopen(_ context.Context, paymentID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attempts[paymentID]
	if !ok || a.Status != model.AttemptCompleted {
		return false, nil
	}
	a.Status = model.AttemptPending
	a.UpdatedAt = at
	a.CompletedAt = nil
	f.attempts[paymentID] = a
	f.reopened++
	return true, nil
}

func (f *fakeAttempts) TouchChecked(_ context.Context, paymentID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.attempts[paymentID]; ok {
		a.LastCheckedAt = &at
		f.attempts[paymentID] = a
		f.checks++
	}
	return nil
}

func (f *fakeAttempts) ListPending(context.Context) ([]model.PaymentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []model.PaymentAttempt
	for _, a := range f.attempts {
		if a.Status == model.AttemptPending {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func (f *fakeAttempts) status(paymentID string) model.AttemptStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[paymentID].Status
}

// fakeSessions is an in-memory SessionManager.
type fakeSessions struct {
	mu         sync.Mutex
	sessions   map[string]*session.Session
	created    []string
	destroyErr error
}

func newFakeSessions(sessions ...*session.Session) *fakeSessions {
	f := &fakeSessions{sessions: make(map[string]*session.Session)}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessions) Create(_ context.Context, token string, user model.User) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &session.Session{ID: "sess-new", Token: token, User: user, Role: user.Role}
	f.sessions[s.ID] = s
	f.created = append(f.created, token)
	return s, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) UpdateUser(_ context.Context, s *session.Session, user model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.User = user
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Destroy(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyErr != nil {
		return f.destroyErr
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[id]
	return ok
}

// recordingPoller records the attempts handed to it.
type recordingPoller struct {
	mu      sync.Mutex
	started []model.PaymentAttempt
}

func (p *recordingPoller) Start(attempt model.PaymentAttempt) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, attempt)
	return true
}

func testSession() *session.Session {
	return &session.Session{
		ID:    "sess-1",
		Token: "token-1",
		User:  model.User{ID: 7, Name: "Ann", Email: "ann@example.com", Role: model.RoleUser},
		Role:  model.RoleUser,
	}
}

func merchantSession() *session.Session {
	s := testSession()
	s.User.Role = model.RoleMerchant
	s.Role = model.RoleMerchant
	return s
}

var (
	_ AuthAPI        = (*MockBackend)(nil)
	_ CartAPI        = (*MockBackend)(nil)
	_ OrderAPI       = (*MockBackend)(nil)
	_ PaymentAPI     = (*MockBackend)(nil)
	_ MerchantAPI    = (*MockBackend)(nil)
	_ DashboardAPI   = (*MockBackend)(nil)
	_ PollerStarter  = (*recordingPoller)(nil)
	_ SessionManager = (*fakeSessions)(nil)
)
