package service

import (
	"context"
	"fmt"
	"time"

	"shopcart/internal/metrics"
	"shopcart/internal/model"
	"shopcart/internal/repository"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
)

// settler closes payment attempts. It is shared by the QR poller and card
// confirmation so both paths settle an order the same way.
type settler struct {
	orders   OrderAPI
	attempts repository.PaymentAttemptRepository
	cart     CartService
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   zerolog.Logger
}

func newSettler(
	orders OrderAPI,
	attempts repository.PaymentAttemptRepository,
	cart CartService,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *settler {
	return &settler{
		orders:   orders,
		attempts: attempts,
		cart:     cart,
		metrics:  m,
		now:      time.Now,
		logger:   logger.With().Str("component", "settlement").Logger(),
	}
}

// complete claims the attempt by moving it from PENDING to COMPLETED, then
// marks the order paid and removes the purchased cart lines. A claim lost to
// another caller leaves the order alone. When the order cannot be marked
// paid the claim is released so a later call can retry. It reports whether
// this call settled the attempt.
func (s *settler) complete(ctx context.Context, sess *session.Session, attempt *model.PaymentAttempt) (bool, error) {
	log := s.logger.With().
		Str("payment_id", attempt.PaymentID).
		Int("order_id", attempt.OrderID).
		Logger()

	won, err := s.attempts.UpdateStatus(ctx, attempt.PaymentID, model.AttemptCompleted, s.now())
	if err != nil {
		return false, err
	}
	if !won {
		s.lost(ctx, attempt)
		return false, nil
	}

	if err := s.orders.CompleteOrder(ctx, sess.Token, attempt.OrderID); err != nil {
		log.Error().Err(err).Msg("failed to complete order")
		s.release(ctx, attempt)
		return false, fmt.Errorf("failed to complete order %d: %w", attempt.OrderID, err)
	}
	attempt.Status = model.AttemptCompleted
	s.metrics.AttemptTransition(string(attempt.Method), string(model.AttemptCompleted))

	if err := s.cart.RemoveItems(ctx, sess, attempt.CartItemIDs); err != nil {
		// The order is paid; leftover lines are only cosmetic.
		log.Warn().Err(err).Msg("order paid but purchased cart lines remain")
	}

	log.Info().Int64("amount", attempt.Amount).Msg("payment completed")
	return true, nil
}

// release puts a claimed attempt back to PENDING. The caller's context may
// already be done, so it uses its own timeout.
func (s *settler) release(ctx context.Context, attempt *model.PaymentAttempt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	reopened, err := s.attempts.Reopen(ctx, attempt.PaymentID, s.now())
	if err != nil || !reopened {
		s.logger.Error().
			Err(err).
			Str("payment_id", attempt.PaymentID).
			Int("order_id", attempt.OrderID).
			Msg("attempt recorded as completed but order is not paid")
	}
}

// lost records why a claim failed. Losing to another completion is normal;
// losing to a failure status means the provider took a payment the ledger
// has already closed.
func (s *settler) lost(ctx context.Context, attempt *model.PaymentAttempt) {
	current, err := s.attempts.GetByPaymentID(ctx, attempt.PaymentID)
	if err != nil || current == nil {
		return
	}
	attempt.Status = current.Status
	if current.Status == model.AttemptCompleted {
		return
	}
	s.logger.Error().
		Str("payment_id", attempt.PaymentID).
		Int("order_id", attempt.OrderID).
		Str("status", string(current.Status)).
		Msg("payment succeeded after the attempt was closed, order left unpaid")
}

// close moves a pending attempt to a terminal failure status.
func (s *settler) close(ctx context.Context, attempt *model.PaymentAttempt, status model.AttemptStatus, reason string) error {
	won, err := s.attempts.UpdateStatus(ctx, attempt.PaymentID, status, s.now())
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	attempt.Status = status
	s.metrics.AttemptTransition(string(attempt.Method), string(status))

	s.logger.Info().
		Str("payment_id", attempt.PaymentID).
		Int("order_id", attempt.OrderID).
		Str("status", string(status)).
		Str("reason", reason).
		Msg("payment closed")
	return nil
}
