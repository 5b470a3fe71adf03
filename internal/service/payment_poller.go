package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"shopcart/internal/backend"
	"shopcart/internal/metrics"
	"shopcart/internal/model"
	"shopcart/internal/repository"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
)

// PaymentPoller watches QR payment attempts until they settle or time out.
// Each attempt gets its own goroutine.
type PaymentPoller struct {
	payments PaymentAPI
	attempts repository.PaymentAttemptRepository
	sessions SessionManager
	settler  *settler
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active map[string]context.CancelFunc
	wg     sync.WaitGroup
}

// NewPaymentPoller creates a poller. Pollers stop when ctx is cancelled or
// Shutdown is called.
func NewPaymentPoller(
	ctx context.Context,
	payments PaymentAPI,
	orders OrderAPI,
	attempts repository.PaymentAttemptRepository,
	sessions SessionManager,
	cartService CartService,
	interval time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PaymentPoller {
	ctx, cancel := context.WithCancel(ctx)
	return &PaymentPoller{
		payments: payments,
		attempts: attempts,
		sessions: sessions,
		settler:  newSettler(orders, attempts, cartService, m, logger),
		interval: interval,
		metrics:  m,
		now:      time.Now,
		logger:   logger.With().Str("service", "payment-poller").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		active:   make(map[string]context.CancelFunc),
	}
}

// Start begins polling attempt. It returns false when the attempt is
// already being polled or the poller is shut down.
func (p *PaymentPoller) Start(attempt model.PaymentAttempt) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx.Err() != nil {
		return false
	}
	if _, ok := p.active[attempt.PaymentID]; ok {
		return false
	}

	ctx, cancel := context.WithCancel(p.ctx)
	p.active[attempt.PaymentID] = cancel
	p.wg.Add(1)
	p.metrics.PollerStarted()

	go func() {
		defer p.wg.Done()
		defer p.metrics.PollerStopped()
		defer p.forget(attempt.PaymentID)
		p.run(ctx, &attempt)
	}()

	p.logger.Info().
		Str("payment_id", attempt.PaymentID).
		Time("deadline", attempt.Deadline).
		Msg("payment polling started")
	return true
}

// Resume restarts polling for attempts left pending by a previous process.
// Attempts whose session has ended are expired. Attempts past their
// deadline get one last provider check before they are expired.
func (p *PaymentPoller) Resume(ctx context.Context) (int, error) {
	pending, err := p.attempts.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for i := range pending {
		attempt := &pending[i]

		switch {
		case !p.now().Before(attempt.Deadline):
			if attempt.Method == model.MethodQR && p.finalCheck(ctx, attempt) {
				continue
			}
			p.expire(ctx, attempt, "deadline passed while stopped")
		case attempt.Method != model.MethodQR:
			// Card attempts wait for the shopper's confirmation.
		default:
			if _, err := p.sessions.Get(ctx, attempt.SessionID); err != nil {
				p.expire(ctx, attempt, "session ended")
				continue
			}
			if p.Start(*attempt) {
				resumed++
			}
		}
	}

	p.logger.Info().
		Int("pending", len(pending)).
		Int("resumed", resumed).
		Msg("payment polling resumed")
	return resumed, nil
}

// Shutdown stops every poller and waits for them to exit. Attempts stay
// PENDING so a later Resume picks them up.
func (p *PaymentPoller) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info().Msg("payment pollers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active reports whether paymentID is being polled.
func (p *PaymentPoller) Active(paymentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[paymentID]
	return ok
}

func (p *PaymentPoller) forget(paymentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.active[paymentID]; ok {
		cancel()
		delete(p.active, paymentID)
	}
}

func (p *PaymentPoller) run(ctx context.Context, attempt *model.PaymentAttempt) {
	deadline := time.NewTimer(attempt.Deadline.Sub(p.now()))
	defer deadline.Stop()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			if p.finalCheck(ctx, attempt) {
				return
			}
			p.metrics.PollOutcome("expired")
			p.closeAttempt(attempt, model.AttemptExpired, "deadline reached")
			return
		case <-ticker.C:
			if p.poll(ctx, attempt) {
				return
			}
		}
	}
}

// poll checks the provider once and reports whether polling is finished.
func (p *PaymentPoller) poll(ctx context.Context, attempt *model.PaymentAttempt) bool {
	log := p.logger.With().Str("payment_id", attempt.PaymentID).Logger()

	sess, err := p.sessions.Get(ctx, attempt.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			p.metrics.PollOutcome("session_ended")
			p.closeAttempt(attempt, model.AttemptExpired, "session ended")
			return true
		}
		p.metrics.PollOutcome("error")
		log.Warn().Err(err).Msg("failed to load session for payment poll")
		return false
	}

	status, err := p.payments.QRPaymentStatus(ctx, sess.Token, attempt.PaymentID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		if errors.Is(err, backend.ErrUnauthorised) {
			if err := p.sessions.Destroy(ctx, sess.ID); err != nil {
				log.Warn().Err(err).Msg("failed to destroy rejected session")
			}
			p.metrics.PollOutcome("session_ended")
			p.closeAttempt(attempt, model.AttemptExpired, "session rejected by backend")
			return true
		}
		p.metrics.PollOutcome("error")
		log.Warn().Err(err).Msg("payment status check failed, will retry")
		return false
	}

	if err := p.attempts.TouchChecked(ctx, attempt.PaymentID, p.now()); err != nil {
		log.Warn().Err(err).Msg("failed to record payment check")
	}

	switch status.Status {
	case model.QRStatusSucceeded:
		won, err := p.settler.complete(ctx, sess, attempt)
		if err != nil {
			p.metrics.PollOutcome("error")
			log.Error().Err(err).Msg("payment succeeded but settlement failed, will retry")
			return false
		}
		if !won {
			p.metrics.PollOutcome("closed")
			return true
		}
		p.metrics.PollOutcome("succeeded")
		return true
	case model.QRStatusCanceled:
		p.metrics.PollOutcome("canceled")
		p.closeAttempt(attempt, model.AttemptFailed, "provider canceled payment")
		return true
	default:
		p.metrics.PollOutcome("pending")
		log.Debug().Str("status", status.Status).Msg("payment still pending")
		return false
	}
}

// finalCheck asks the provider once more about an attempt whose deadline
// has passed. It reports true when the payment succeeded and the attempt
// must not be expired. A settlement failure leaves the attempt PENDING for
// the next Resume.
func (p *PaymentPoller) finalCheck(ctx context.Context, attempt *model.PaymentAttempt) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	log := p.logger.With().Str("payment_id", attempt.PaymentID).Logger()

	sess, err := p.sessions.Get(ctx, attempt.SessionID)
	if err != nil {
		return false
	}
	status, err := p.payments.QRPaymentStatus(ctx, sess.Token, attempt.PaymentID)
	if err != nil {
		log.Warn().Err(err).Msg("final payment status check failed")
		return false
	}
	if status.Status != model.QRStatusSucceeded {
		return false
	}

	won, err := p.settler.complete(ctx, sess, attempt)
	switch {
	case err != nil:
		p.metrics.PollOutcome("error")
		log.Error().Err(err).Msg("payment succeeded at deadline but settlement failed, left pending")
	case won:
		p.metrics.PollOutcome("succeeded")
	default:
		p.metrics.PollOutcome("closed")
	}
	return true
}

func (p *PaymentPoller) expire(ctx context.Context, attempt *model.PaymentAttempt, reason string) {
	if err := p.settler.close(ctx, attempt, model.AttemptExpired, reason); err != nil {
		p.logger.Error().Err(err).Str("payment_id", attempt.PaymentID).Msg("failed to expire attempt")
	}
}

// closeAttempt uses its own timeout; the poll context may already be done.
func (p *PaymentPoller) closeAttempt(attempt *model.PaymentAttempt, status model.AttemptStatus, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.settler.close(ctx, attempt, status, reason); err != nil {
		p.logger.Error().
			Err(err).
			Str("payment_id", attempt.PaymentID).
			Str("status", string(status)).
			Msg("failed to close payment attempt")
	}
}
