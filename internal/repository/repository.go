package repository

import (
	"context"
	"time"

	"shopcart/internal/model"
)

// PaymentAttemptRepository defines data access for the payment attempt ledger.
type PaymentAttemptRepository interface {
	// EnsureSchema creates the ledger table when it does not exist.
	EnsureSchema(ctx context.Context) error

	// Create records a new attempt.
	Create(ctx context.Context, attempt *model.PaymentAttempt) error

	// GetByPaymentID returns the attempt for a provider payment id, or nil
	// when there is none.
	GetByPaymentID(ctx context.Context, paymentID string) (*model.PaymentAttempt, error)

	// UpdateStatus moves a PENDING attempt to status. It reports false when
	// the attempt was no longer pending.
	UpdateStatus(ctx context.Context, paymentID string, status model.AttemptStatus, at time.Time) (bool, error)

	// Reopen returns a COMPLETED attempt to PENDING. It reports false when
	// the attempt was not completed.
	Reopen(ctx context.Context, paymentID string, at time.Time) (bool, error)

	// TouchChecked records when the provider status was last polled.
	TouchChecked(ctx context.Context, paymentID string, at time.Time) error

	// ListPending returns every attempt still awaiting settlement.
	ListPending(ctx context.Context) ([]model.PaymentAttempt, error)
}
