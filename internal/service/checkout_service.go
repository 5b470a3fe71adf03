package service

import (
	"context"
	"strings"
	"time"

	"shopcart/internal/metrics"
	"shopcart/internal/model"
	"shopcart/internal/repository"
	"shopcart/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutConfig holds the checkout rules.
type CheckoutConfig struct {
	Policy         model.TotalsPolicy
	Currency       string
	PaymentTimeout time.Duration
}

// PollerStarter begins polling a QR attempt.
type PollerStarter interface {
	Start(attempt model.PaymentAttempt) bool
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	carts    CartAPI
	orders   OrderAPI
	payments PaymentAPI
	attempts repository.PaymentAttemptRepository
	poller   PollerStarter
	settler  *settler
	cfg      CheckoutConfig
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts CartAPI,
	orders OrderAPI,
	payments PaymentAPI,
	attempts repository.PaymentAttemptRepository,
	cartService CartService,
	poller PollerStarter,
	cfg CheckoutConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		carts:    carts,
		orders:   orders,
		payments: payments,
		attempts: attempts,
		poller:   poller,
		settler:  newSettler(orders, attempts, cartService, m, logger),
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
		logger:   logger.With().Str("service", "checkout").Logger(),
	}
}

// PlaceOrder creates the order for the selected cart lines and opens a
// payment intent for its rounded total.
func (s *checkoutService) PlaceOrder(ctx context.Context, sess *session.Session, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, model.ErrInvalidPaymentMethod
	}

	current, err := s.carts.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	selected, err := current.Select(req.CartItemIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, model.ErrEmptyCheckout
	}

	totals := model.ComputeTotals(selected, s.cfg.Policy)

	orderReq := model.OrderRequest{
		Items:       make([]model.OrderItemRequest, 0, len(selected)),
		Total:       totals.Total.InexactFloat64(),
		PaymentType: string(req.PaymentMethod),
	}
	cartItemIDs := make([]int64, 0, len(selected))
	for _, item := range selected {
		orderReq.Items = append(orderReq.Items, model.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		cartItemIDs = append(cartItemIDs, int64(item.CartItemID))
	}

	order, err := s.orders.CreateOrder(ctx, sess.Token, orderReq)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", sess.User.ID).Msg("failed to create order")
		return nil, err
	}

	intentReq := model.PaymentIntentRequest{
		Amount:   totals.ChargeAmount(),
		Currency: s.cfg.Currency,
		Metadata: model.PaymentMetadata{OrderIDs: order.ID},
	}

	now := s.now()
	attempt := model.PaymentAttempt{
		ID:          uuid.New(),
		OrderID:     order.ID,
		UserID:      sess.User.ID,
		SessionID:   sess.ID,
		Method:      req.PaymentMethod,
		Amount:      intentReq.Amount,
		Currency:    intentReq.Currency,
		Status:      model.AttemptPending,
		CartItemIDs: cartItemIDs,
		Deadline:    now.Add(s.cfg.PaymentTimeout),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	result := &model.CheckoutResult{
		Order:  order,
		Totals: totals,
		Method: req.PaymentMethod,
	}

	if req.PaymentMethod == model.MethodQR {
		intent, err := s.payments.CreateQRPayment(ctx, sess.Token, intentReq)
		if err != nil {
			s.logger.Error().Err(err).Int("order_id", order.ID).Msg("failed to create QR payment; order left pending")
			return nil, err
		}
		attempt.PaymentID = intent.PaymentID
		result.QRURL = intent.QRURL
	} else {
		intent, err := s.payments.CreateCardPayment(ctx, sess.Token, intentReq)
		if err != nil {
			s.logger.Error().Err(err).Int("order_id", order.ID).Msg("failed to create card payment; order left pending")
			return nil, err
		}
		attempt.PaymentID = intent.PaymentID
		if attempt.PaymentID == "" {
			attempt.PaymentID = paymentIDFromSecret(intent.ClientSecret)
		}
		result.ClientSecret = intent.ClientSecret
	}

	if err := s.attempts.Create(ctx, &attempt); err != nil {
		return nil, err
	}
	s.metrics.AttemptTransition(string(attempt.Method), string(model.AttemptPending))

	if attempt.Method == model.MethodQR {
		s.poller.Start(attempt)
	}

	result.PaymentID = attempt.PaymentID
	result.ExpiresAt = &attempt.Deadline

	s.logger.Info().
		Int("order_id", order.ID).
		Str("payment_id", attempt.PaymentID).
		Str("method", string(attempt.Method)).
		Int64("amount", attempt.Amount).
		Int("lines", len(selected)).
		Msg("order placed")
	return result, nil
}

// ConfirmCard settles a card attempt once the provider's client-side
// confirmation has succeeded. Confirming a completed attempt is a no-op.
func (s *checkoutService) ConfirmCard(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentStatusView, error) {
	attempt, err := s.ownedAttempt(ctx, sess, paymentID)
	if err != nil {
		return nil, err
	}
	if !attempt.Method.IsCard() {
		return nil, model.ErrInvalidPaymentMethod
	}

	switch {
	case attempt.Status == model.AttemptCompleted:
		return s.view(attempt), nil
	case attempt.Status.Terminal():
		return nil, model.ErrPaymentClosed
	case !s.now().Before(attempt.Deadline):
		if err := s.settler.close(ctx, attempt, model.AttemptExpired, "confirmation after deadline"); err != nil {
			return nil, err
		}
		return nil, model.ErrPaymentClosed
	}

	won, err := s.settler.complete(ctx, sess, attempt)
	if err != nil {
		return nil, err
	}
	if !won && attempt.Status.Terminal() && attempt.Status != model.AttemptCompleted {
		return nil, model.ErrPaymentClosed
	}

	fresh, err := s.attempts.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if fresh != nil {
		attempt = fresh
	}
	return s.view(attempt), nil
}

// PaymentStatus reports an attempt's progress. A pending card attempt found
// past its deadline is expired on read since no poller watches it. QR
// deadlines belong to the poller, which checks the provider one last time.
func (s *checkoutService) PaymentStatus(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentStatusView, error) {
	attempt, err := s.ownedAttempt(ctx, sess, paymentID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptPending && attempt.Method.IsCard() && !s.now().Before(attempt.Deadline) {
		if err := s.settler.close(ctx, attempt, model.AttemptExpired, "deadline passed"); err != nil {
			return nil, err
		}
		if attempt.Status == model.AttemptPending {
			fresh, err := s.attempts.GetByPaymentID(ctx, paymentID)
			if err != nil {
				return nil, err
			}
			if fresh != nil {
				attempt = fresh
			}
		}
	}
	return s.view(attempt), nil
}

// ownedAttempt loads an attempt and hides those of other users.
func (s *checkoutService) ownedAttempt(ctx context.Context, sess *session.Session, paymentID string) (*model.PaymentAttempt, error) {
	attempt, err := s.attempts.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if attempt == nil || attempt.UserID != sess.User.ID {
		return nil, model.ErrPaymentNotFound
	}
	return attempt, nil
}

func (s *checkoutService) view(a *model.PaymentAttempt) *model.PaymentStatusView {
	return &model.PaymentStatusView{
		PaymentID:        a.PaymentID,
		OrderID:          a.OrderID,
		Status:           a.Status,
		RemainingSeconds: int(a.Remaining(s.now()).Seconds()),
		Amount:           a.Amount,
		Currency:         a.Currency,
	}
}

// paymentIDFromSecret derives the intent id from a client secret of the form
// "<intent id>_secret_<nonce>".
func paymentIDFromSecret(secret string) string {
	if i := strings.Index(secret, "_secret_"); i > 0 {
		return secret[:i]
	}
	return uuid.NewString()
}
