package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopcart/internal/cart"
	"shopcart/internal/metrics"
	"shopcart/internal/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	api      *MockBackend
	attempts *fakeAttempts
	poller   *recordingPoller
	metrics  *metrics.Metrics
	service  CheckoutService
}

func newCheckoutFixture(attempts ...model.PaymentAttempt) *checkoutFixture {
	f := &checkoutFixture{
		api:      new(MockBackend),
		attempts: newFakeAttempts(attempts...),
		poller:   &recordingPoller{},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	logger := zerolog.Nop()
	carts := NewCartService(f.api, cart.NewCache(0), model.DefaultTotalsPolicy(), logger)
	cfg := CheckoutConfig{
		Policy:         model.DefaultTotalsPolicy(),
		Currency:       "thb",
		PaymentTimeout: 10 * time.Minute,
	}
	f.service = NewCheckoutService(f.api, f.api, f.api, f.attempts, carts, f.poller, cfg, f.metrics, logger)
	return f
}

func pendingCardAttempt(userID int, deadline time.Time) model.PaymentAttempt {
	now := time.Now()
	return model.PaymentAttempt{
		ID:          uuid.New(),
		PaymentID:   "pi_card",
		OrderID:     99,
		UserID:      userID,
		SessionID:   "sess-1",
		Method:      model.MethodCredit,
		Amount:      235,
		Currency:    "thb",
		Status:      model.AttemptPending,
		CartItemIDs: []int64{1},
		Deadline:    deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCheckoutService_PlaceOrder_QR(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	f := newCheckoutFixture()

	expectedOrder := model.OrderRequest{
		Items:       []model.OrderItemRequest{{ProductID: 10, Quantity: 2}},
		Total:       235,
		PaymentType: "qr",
	}
	expectedIntent := model.PaymentIntentRequest{
		Amount:   235,
		Currency: "thb",
		Metadata: model.PaymentMetadata{OrderIDs: 99},
	}

	f.api.On("GetCart", ctx, sess.Token).Return(sampleCart(), nil)
	f.api.On("CreateOrder", ctx, sess.Token, expectedOrder).Return(&model.Order{ID: 99, Status: model.OrderPending, Total: 235}, nil)
	f.api.On("CreateQRPayment", ctx, sess.Token, expectedIntent).Return(&model.QRPaymentIntent{PaymentID: "pi_qr", QRURL: "https://qr.example/pi_qr"}, nil)

	result, err := f.service.PlaceOrder(ctx, sess, model.CheckoutRequest{
		CartItemIDs:   []int{1},
		PaymentMethod: model.MethodQR,
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_qr", result.PaymentID)
	assert.Equal(t, "https://qr.example/pi_qr", result.QRURL)
	assert.Empty(t, result.ClientSecret)
	assert.Equal(t, 99, result.Order.ID)
	assert.True(t, decimal.NewFromInt(235).Equal(result.Totals.Total))
	require.NotNil(t, result.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *result.ExpiresAt, 5*time.Second)

	stored, err := f.attempts.GetByPaymentID(ctx, "pi_qr")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.AttemptPending, stored.Status)
	assert.Equal(t, []int64{1}, stored.CartItemIDs)
	assert.Equal(t, sess.User.ID, stored.UserID)
	assert.Equal(t, sess.ID, stored.SessionID)

	require.Len(t, f.poller.started, 1)
	assert.Equal(t, "pi_qr", f.poller.started[0].PaymentID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentAttempts.WithLabelValues("qr", "PENDING")))
	f.api.AssertExpectations(t)
}

func TestCheckoutService_PlaceOrder_Card(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	f := newCheckoutFixture()

	f.api.On("GetCart", ctx, sess.Token).Return(sampleCart(), nil)
	f.api.On("CreateOrder", ctx, sess.Token, mock.AnythingOfType("model.OrderRequest")).Return(&model.Order{ID: 100}, nil)
	f.api.On("CreateCardPayment", ctx, sess.Token, mock.AnythingOfType("model.PaymentIntentRequest")).
		Return(&model.CardPaymentIntent{ClientSecret: "pi_123_secret_abc"}, nil)

	// No ids selects the whole cart: 250 + 15 shipping + 25 tax.
	result, err := f.service.PlaceOrder(ctx, sess, model.CheckoutRequest{PaymentMethod: model.MethodDebit})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", result.PaymentID)
	assert.Equal(t, "pi_123_secret_abc", result.ClientSecret)
	assert.True(t, decimal.NewFromInt(290).Equal(result.Totals.Total))
	assert.Empty(t, f.poller.started)

	stored, err := f.attempts.GetByPaymentID(ctx, "pi_123")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.ElementsMatch(t, []int64{1, 2}, stored.CartItemIDs)
	assert.Equal(t, int64(290), stored.Amount)
}

func TestCheckoutService_PlaceOrder_Errors(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	backendErr := errors.New("backend down")

	tests := []struct {
		name        string
		req         model.CheckoutRequest
		cart        *model.Cart
		orderErr    error
		expectedErr error
	}{
		{
			name:        "Unknown payment method",
			req:         model.CheckoutRequest{PaymentMethod: "cash"},
			cart:        sampleCart(),
			expectedErr: model.ErrInvalidPaymentMethod,
		},
		{
			name:        "Empty cart",
			req:         model.CheckoutRequest{PaymentMethod: model.MethodQR},
			cart:        &model.Cart{},
			expectedErr: model.ErrEmptyCheckout,
		},
		{
			name:        "Line not in cart",
			req:         model.CheckoutRequest{PaymentMethod: model.MethodQR, CartItemIDs: []int{1, 42}},
			cart:        sampleCart(),
			expectedErr: model.ErrCartItemNotFound,
		},
		{
			name:        "Order creation fails",
			req:         model.CheckoutRequest{PaymentMethod: model.MethodQR},
			cart:        sampleCart(),
			orderErr:    backendErr,
			expectedErr: backendErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			f.api.On("GetCart", ctx, sess.Token).Return(tt.cart, nil)
			f.api.On("CreateOrder", ctx, sess.Token, mock.Anything).Return(nil, tt.orderErr)

			result, err := f.service.PlaceOrder(ctx, sess, tt.req)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, result)
			assert.Empty(t, f.poller.started)
			f.api.AssertNotCalled(t, "CreateQRPayment", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutService_ConfirmCard(t *testing.T) {
	ctx := context.Background()
	sess := testSession()

	t.Run("Settles once", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID, time.Now().Add(time.Minute)))
		f.api.On("CompleteOrder", ctx, sess.Token, 99).Return(nil).Once()
		f.api.On("RemoveCartItem", mock.Anything, sess.Token, 1).Return(nil).Once()

		view, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		require.NoError(t, err)
		assert.Equal(t, model.AttemptCompleted, view.Status)
		assert.Equal(t, 0, view.RemainingSeconds)
		assert.Equal(t, model.AttemptCompleted, f.attempts.status("pi_card"))

		again, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		require.NoError(t, err)
		assert.Equal(t, model.AttemptCompleted, again.Status)
		f.api.AssertNumberOfCalls(t, "CompleteOrder", 1)
		f.api.AssertNumberOfCalls(t, "RemoveCartItem", 1)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PaymentAttempts.WithLabelValues("credit", "COMPLETED")))
	})

	t.Run("Cart cleanup failure still completes", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID, time.Now().Add(time.Minute)))
		f.api.On("CompleteOrder", ctx, sess.Token, 99).Return(nil)
		f.api.On("RemoveCartItem", mock.Anything, sess.Token, 1).Return(errors.New("timeout"))

		view, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		require.NoError(t, err)
		assert.Equal(t, model.AttemptCompleted, view.Status)
	})

	t.Run("Order completion failure leaves attempt pending", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID, time.Now().Add(time.Minute)))
		f.api.On("CompleteOrder", ctx, sess.Token, 99).Return(errors.New("backend down"))

		_, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		require.Error(t, err)
		assert.Equal(t, model.AttemptPending, f.attempts.status("pi_card"))
	})

	t.Run("Past deadline expires", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID, time.Now().Add(-time.Second)))

		_, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		assert.ErrorIs(t, err, model.ErrPaymentClosed)
		assert.Equal(t, model.AttemptExpired, f.attempts.status("pi_card"))
		f.api.AssertNotCalled(t, "CompleteOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Other user's payment", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID+1, time.Now().Add(time.Minute)))

		_, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		assert.ErrorIs(t, err, model.ErrPaymentNotFound)
	})

	t.Run("Unknown payment", func(t *testing.T) {
		f := newCheckoutFixture()

		_, err := f.service.ConfirmCard(ctx, sess, "pi_missing")

		assert.ErrorIs(t, err, model.ErrPaymentNotFound)
	})

	t.Run("QR payment", func(t *testing.T) {
		attempt := pendingCardAttempt(sess.User.ID, time.Now().Add(time.Minute))
		attempt.Method = model.MethodQR
		f := newCheckoutFixture(attempt)

		_, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		assert.ErrorIs(t, err, model.ErrInvalidPaymentMethod)
	})

	t.Run("Failed payment", func(t *testing.T) {
		attempt := pendingCardAttempt(sess.User.ID, time.Now().Add(time.Minute))
		attempt.Status = model.AttemptFailed
		f := newCheckoutFixture(attempt)

		_, err := f.service.ConfirmCard(ctx, sess, "pi_card")

		assert.ErrorIs(t, err, model.ErrPaymentClosed)
	})
}

func TestCheckoutService_PaymentStatus(t *testing.T) {
	ctx := context.Background()
	sess := testSession()

	t.Run("Pending reports remaining time", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID, time.Now().Add(2*time.Minute)))

		view, err := f.service.PaymentStatus(ctx, sess, "pi_card")

		require.NoError(t, err)
		assert.Equal(t, model.AttemptPending, view.Status)
		assert.InDelta(t, 120, view.RemainingSeconds, 2)
		assert.Equal(t, 99, view.OrderID)
	})

	t.Run("Pending past deadline is expired on read", func(t *testing.T) {
		f := newCheckoutFixture(pendingCardAttempt(sess.User.ID, time.Now().Add(-time.Second)))

		view, err := f.service.PaymentStatus(ctx, sess, "pi_card")

		require.NoError(t, err)
		assert.Equal(t, model.AttemptExpired, view.Status)
		assert.Equal(t, 0, view.RemainingSeconds)
		assert.Equal(t, model.AttemptExpired, f.attempts.status("pi_card"))
	})

	t.Run("QR past deadline is left to the poller", func(t *testing.T) {
		attempt := pendingCardAttempt(sess.User.ID, time.Now().Add(-time.Second))
		attempt.Method = model.MethodQR
		f := newCheckoutFixture(attempt)

		view, err := f.service.PaymentStatus(ctx, sess, "pi_card")

		require.NoError(t, err)
		assert.Equal(t, model.AttemptPending, view.Status)
		assert.Equal(t, 0, view.RemainingSeconds)
		assert.Equal(t, model.AttemptPending, f.attempts.status("pi_card"))
	})
}

func TestPaymentIDFromSecret(t *testing.T) {
	assert.Equal(t, "pi_3Nabc", paymentIDFromSecret("pi_3Nabc_secret_xyz"))

	generated := paymentIDFromSecret("opaque")
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}
