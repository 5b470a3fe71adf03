package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Seeded accounts on the fake backend.
const (
	ShopperEmail    = "shopper@example.com"
	MerchantEmail   = "merchant@example.com"
	AccountPassword = "secret1"

	shopperID  = 7
	merchantID = 1

	tokenSecret = "fake-backend-secret"
)

type fakeAccount struct {
	user     model.User
	password string
}

type fakeLine struct {
	id        int
	productID int
	quantity  int
}

type fakePayment struct {
	orderID int
	method  string
	polls   int
}

// FakeBackend is an in-memory commerce backend serving the REST paths the
// gateway calls. QR payments succeed after QRPollsToSucceed status polls.
type FakeBackend struct {
	Server *httptest.Server

	QRPollsToSucceed int

	mu          sync.Mutex
	accounts    map[string]fakeAccount
	tokens      map[string]int
	products    []model.Product
	categories  []model.Category
	carts       map[int][]fakeLine
	orders      map[int]*model.Order
	payments    map[string]*fakePayment
	nextLineID  int
	nextOrderID int
	nextPayment int
}

// NewFakeBackend starts a fake backend with a generated catalog.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		QRPollsToSucceed: 2,
		accounts: map[string]fakeAccount{
			ShopperEmail:  {user: model.User{ID: shopperID, Name: "Sam Shopper", Email: ShopperEmail, Role: model.RoleUser}, password: AccountPassword},
			MerchantEmail: {user: model.User{ID: merchantID, Name: "Mia Merchant", Email: MerchantEmail, Role: model.RoleMerchant}, password: AccountPassword},
		},
		tokens:      make(map[string]int),
		carts:       make(map[int][]fakeLine),
		orders:      make(map[int]*model.Order),
		payments:    make(map[string]*fakePayment),
		nextLineID:  100,
		nextOrderID: 500,
	}
	b.seedCatalog(gofakeit.New(42))

	r := chi.NewRouter()
	r.Post("/auth/login", b.login)
	r.Get("/products", b.listProducts)
	r.Get("/products/{id}", b.getProduct)
	r.Get("/categories", b.listCategories)

	r.Group(func(r chi.Router) {
		r.Use(b.authenticate)

		r.Get("/user/profile", b.profile)
		r.Get("/cart", b.getCart)
		r.Post("/cart", b.addToCart)
		r.Patch("/cart/set", b.setQuantity)
		r.Patch("/cart/{id}/increment", b.increment)
		r.Delete("/cart/{id}", b.removeLine)
		r.Delete("/cart", b.clearCart)
		r.Post("/user-orders", b.createOrder)
		r.Patch("/user-orders/{id}", b.completeOrder)
		r.Post("/payment/stripe/create-payment-promptpay", b.createQR)
		r.Post("/payment/stripe/create-payment-card", b.createCard)
		r.Get("/payment/qr/status/{id}", b.qrStatus)
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// Products returns a copy of the generated catalog.
func (b *FakeBackend) Products() []model.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Product(nil), b.products...)
}

// Order returns the backend's copy of an order.
func (b *FakeBackend) Order(id int) (model.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return *o, true
}

// CartLines returns the number of lines in the user's backend cart.
func (b *FakeBackend) CartLines(userID int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.carts[userID])
}

// RevokeTokens invalidates every token issued to userID.
func (b *FakeBackend) RevokeTokens(userID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for token, id := range b.tokens {
		if id == userID {
			delete(b.tokens, token)
		}
	}
}

func (b *FakeBackend) seedCatalog(f *gofakeit.Faker) {
	now := time.Now().UTC()
	for i := 1; i <= 3; i++ {
		b.categories = append(b.categories, model.Category{ID: i, Name: f.ProductCategory(), CreatedAt: now})
	}
	for i := 1; i <= 12; i++ {
		desc := f.ProductDescription()
		category := b.categories[i%len(b.categories)]
		b.products = append(b.products, model.Product{
			ID:          i,
			Name:        f.ProductName(),
			Description: &desc,
			Price:       float64(f.Number(50, 900)),
			Stock:       f.Number(5, 50),
			CategoryID:  category.ID,
			Category:    &category,
			Images:      []model.ProductImage{},
			CreatedAt:   now,
		})
	}
}

func (b *FakeBackend) issueToken(user model.User) (string, error) {
	claims := session.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tokenSecret))
}

func (b *FakeBackend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		b.mu.Lock()
		userID, ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			reply(w, http.StatusUnauthorized, model.MessageResponse{Message: "Unauthorized"})
			return
		}
		r.Header.Set("X-User-ID", strconv.Itoa(userID))
		next.ServeHTTP(w, r)
	})
}

func userOf(r *http.Request) int {
	id, _ := strconv.Atoi(r.Header.Get("X-User-ID"))
	return id
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	account, ok := b.accounts[req.Email]
	if !ok || account.password != req.Password {
		reply(w, http.StatusUnauthorized, model.MessageResponse{Message: "Invalid email or password"})
		return
	}
	token, err := b.issueToken(account.user)
	if err != nil {
		reply(w, http.StatusInternalServerError, model.MessageResponse{Message: err.Error()})
		return
	}
	b.tokens[token] = account.user.ID
	reply(w, http.StatusOK, model.LoginResult{Token: token, User: account.user})
}

func (b *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, account := range b.accounts {
		if account.user.ID == userOf(r) {
			reply(w, http.StatusOK, account.user)
			return
		}
	}
	reply(w, http.StatusNotFound, model.MessageResponse{Message: "User not found"})
}

func (b *FakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	data := b.products
	if len(data) > limit {
		data = data[:limit]
	}
	reply(w, http.StatusOK, model.ProductPage{
		Data: data,
		Meta: model.Meta{Total: len(b.products), Page: 1, Limit: limit, TotalPages: (len(b.products) + limit - 1) / limit},
	})
}

func (b *FakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.product(id); p != nil {
		reply(w, http.StatusOK, p)
		return
	}
	reply(w, http.StatusNotFound, model.MessageResponse{Message: "Product not found"})
}

func (b *FakeBackend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reply(w, http.StatusOK, b.categories)
}

func (b *FakeBackend) product(id int) *model.Product {
	for i := range b.products {
		if b.products[i].ID == id {
			return &b.products[i]
		}
	}
	return nil
}

func (b *FakeBackend) getCart(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := model.Cart{Items: []model.CartItem{}}
	for _, line := range b.carts[userOf(r)] {
		p := b.product(line.productID)
		c.Items = append(c.Items, model.CartItem{
			CartItemID:  line.id,
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    line.quantity,
			Product:     p,
		})
		c.TotalItems += line.quantity
		c.TotalPrice += p.Price * float64(line.quantity)
	}
	reply(w, http.StatusOK, c)
}

func (b *FakeBackend) addToCart(w http.ResponseWriter, r *http.Request) {
	var req model.AddCartItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.product(req.ProductID) == nil {
		reply(w, http.StatusNotFound, model.MessageResponse{Message: "Product not found"})
		return
	}
	user := userOf(r)
	b.nextLineID++
	b.carts[user] = append(b.carts[user], fakeLine{id: b.nextLineID, productID: req.ProductID, quantity: req.Quantity})
	reply(w, http.StatusCreated, model.MessageResponse{Message: "Added to cart"})
}

func (b *FakeBackend) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req model.SetCartItemQuantity
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid body"})
		return
	}
	b.updateLine(w, userOf(r), req.CartItemID, func(l *fakeLine) { l.quantity = req.Quantity })
}

func (b *FakeBackend) increment(w http.ResponseWriter, r *http.Request) {
	var req model.ChangeCartItemAmount
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid body"})
		return
	}
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b.updateLine(w, userOf(r), id, func(l *fakeLine) { l.quantity += req.Amount })
}

func (b *FakeBackend) updateLine(w http.ResponseWriter, user, lineID int, apply func(*fakeLine)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := b.carts[user]
	for i := range lines {
		if lines[i].id == lineID {
			apply(&lines[i])
			reply(w, http.StatusOK, model.MessageResponse{Message: "Cart updated"})
			return
		}
	}
	reply(w, http.StatusNotFound, model.MessageResponse{Message: "Cart item not found"})
}

func (b *FakeBackend) removeLine(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	user := userOf(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	lines := b.carts[user]
	for i := range lines {
		if lines[i].id == id {
			b.carts[user] = append(lines[:i:i], lines[i+1:]...)
			reply(w, http.StatusOK, model.MessageResponse{Message: "Removed"})
			return
		}
	}
	reply(w, http.StatusNotFound, model.MessageResponse{Message: "Cart item not found"})
}

func (b *FakeBackend) clearCart(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.carts, userOf(r))
	reply(w, http.StatusOK, model.MessageResponse{Message: "Cart cleared"})
}

func (b *FakeBackend) createOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid order"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextOrderID++
	now := time.Now().UTC()
	order := &model.Order{
		ID:        b.nextOrderID,
		UserID:    userOf(r),
		Status:    model.OrderPending,
		Total:     req.Total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, item := range req.Items {
		p := b.product(item.ProductID)
		if p == nil {
			reply(w, http.StatusNotFound, model.MessageResponse{Message: "Product not found"})
			return
		}
		order.Items = append(order.Items, model.OrderItem{ID: i + 1, OrderID: order.ID, ProductID: p.ID, Quantity: item.Quantity, Price: p.Price})
	}
	b.orders[order.ID] = order
	reply(w, http.StatusCreated, map[string]any{"data": order})
}

func (b *FakeBackend) completeOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	b.mu.Lock()
	defer b.mu.Unlock()
	order, ok := b.orders[id]
	if !ok || order.UserID != userOf(r) {
		reply(w, http.StatusNotFound, model.MessageResponse{Message: "Order not found"})
		return
	}
	order.Status = model.OrderCompleted
	order.UpdatedAt = time.Now().UTC()
	reply(w, http.StatusOK, model.MessageResponse{Message: "Order completed"})
}

func (b *FakeBackend) newPayment(method string, req model.PaymentIntentRequest) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.orders[req.Metadata.OrderIDs]; !ok || req.Amount <= 0 {
		return "", false
	}
	b.nextPayment++
	id := fmt.Sprintf("pi_%s_%d", method, b.nextPayment)
	b.payments[id] = &fakePayment{orderID: req.Metadata.OrderIDs, method: method}
	return id, true
}

func (b *FakeBackend) createQR(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid body"})
		return
	}
	id, ok := b.newPayment("qr", req)
	if !ok {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid payment"})
		return
	}
	reply(w, http.StatusOK, model.QRPaymentIntent{PaymentID: id, QRURL: "https://qr.example/" + id})
}

func (b *FakeBackend) createCard(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid body"})
		return
	}
	id, ok := b.newPayment("card", req)
	if !ok {
		reply(w, http.StatusBadRequest, model.MessageResponse{Message: "Invalid payment"})
		return
	}
	reply(w, http.StatusOK, model.CardPaymentIntent{PaymentID: id, ClientSecret: id + "_secret_abc"})
}

func (b *FakeBackend) qrStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.payments[chi.URLParam(r, "id")]
	if !ok {
		reply(w, http.StatusNotFound, model.MessageResponse{Message: "Payment not found"})
		return
	}
	p.polls++
	status := "requires_action"
	if p.polls >= b.QRPollsToSucceed {
		status = model.QRStatusSucceeded
	}
	reply(w, http.StatusOK, model.QRStatus{Status: status})
}
