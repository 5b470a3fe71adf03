package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopcart/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const paymentAttemptSchema = `
	CREATE TABLE IF NOT EXISTS payment_attempts (
		id UUID PRIMARY KEY,
		payment_id TEXT NOT NULL UNIQUE,
		order_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		session_id TEXT NOT NULL,
		method TEXT NOT NULL,
		amount BIGINT NOT NULL CHECK (amount >= 0),
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		cart_item_ids BIGINT[] NOT NULL DEFAULT '{}',
		deadline TIMESTAMPTZ NOT NULL,
		last_checked_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_payment_attempts_pending
		ON payment_attempts(deadline) WHERE status = 'PENDING';
`

const attemptColumns = `
	id, payment_id, order_id, user_id, session_id, method, amount, currency, status,
	cart_item_ids, deadline, last_checked_at, completed_at, created_at, updated_at
`

// paymentAttemptRepository implements PaymentAttemptRepository using PostgreSQL.
type paymentAttemptRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentAttemptRepository creates a new PostgreSQL-backed attempt ledger.
func NewPaymentAttemptRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentAttemptRepository {
	return &paymentAttemptRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment_attempt").Logger(),
	}
}

func (r *paymentAttemptRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, paymentAttemptSchema); err != nil {
		r.logger.Error().Err(err).Msg("failed to create payment_attempts schema")
		return fmt.Errorf("failed to create payment_attempts schema: %w", err)
	}
	return nil
}

func (r *paymentAttemptRepository) Create(ctx context.Context, a *model.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	cartItemIDs := a.CartItemIDs
	if cartItemIDs == nil {
		cartItemIDs = []int64{}
	}

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.PaymentID,
		a.OrderID,
		a.UserID,
		a.SessionID,
		string(a.Method),
		a.Amount,
		a.Currency,
		string(a.Status),
		cartItemIDs,
		a.Deadline,
		a.LastCheckedAt,
		a.CompletedAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", a.PaymentID).
			Int("order_id", a.OrderID).
			Msg("failed to create payment attempt")
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}

	r.logger.Debug().
		Str("payment_id", a.PaymentID).
		Str("method", string(a.Method)).
		Msg("payment attempt created")
	return nil
}

func (r *paymentAttemptRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE payment_id = $1`

	attempt, err := scanAttempt(r.pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("payment_id", paymentID).Msg("payment attempt not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", paymentID).Msg("failed to query payment attempt")
		return nil, fmt.Errorf("failed to query payment attempt: %w", err)
	}
	return attempt, nil
}

func (r *paymentAttemptRepository) UpdateStatus(ctx context.Context, paymentID string, status model.AttemptStatus, at time.Time) (bool, error) {
	query := `
		UPDATE payment_attempts
		SET status = $2,
			updated_at = $3,
			completed_at = CASE WHEN $2 = 'COMPLETED' THEN $3 ELSE completed_at END
		WHERE payment_id = $1 AND status = 'PENDING'
	`

	tag, err := r.pool.Exec(ctx, query, paymentID, string(status), at)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("payment_id", paymentID).
			Str("status", string(status)).
			Msg("failed to update payment attempt status")
		return false, fmt.Errorf("failed to update payment attempt status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentAttemptRepository) Reopen(ctx context.Context, paymentID string, at time.Time) (bool, error) {
	query := `
		UPDATE payment_attempts
		SET status = 'PENDING', updated_at = $2, completed_at = NULL
		WHERE payment_id = $1 AND status = 'COMPLETED'
	`

	tag, err := r.pool.Exec(ctx, query, paymentID, at)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", paymentID).Msg("failed to reopen payment attempt")
		return false, fmt.Errorf("failed to reopen payment attempt: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *paymentAttemptRepository) TouchChecked(ctx context.Context, paymentID string, at time.Time) error {
	query := `UPDATE payment_attempts SET last_checked_at = $2, updated_at = $2 WHERE payment_id = $1`

	if _, err := r.pool.Exec(ctx, query, paymentID, at); err != nil {
		r.logger.Error().Err(err).Str("payment_id", paymentID).Msg("failed to record payment check")
		return fmt.Errorf("failed to record payment check: %w", err)
	}
	return nil
}

func (r *paymentAttemptRepository) ListPending(ctx context.Context) ([]model.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE status = 'PENDING' ORDER BY deadline`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query pending payment attempts")
		return nil, fmt.Errorf("failed to query pending payment attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.PaymentAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan payment attempt row")
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		attempts = append(attempts, *attempt)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating payment attempt rows")
		return nil, fmt.Errorf("error iterating payment attempts: %w", err)
	}

	return attempts, nil
}

func scanAttempt(row pgx.Row) (*model.PaymentAttempt, error) {
	var (
		a      model.PaymentAttempt
		method string
		status string
	)
	err := row.Scan(
		&a.ID,
		&a.PaymentID,
		&a.OrderID,
		&a.UserID,
		&a.SessionID,
		&method,
		&a.Amount,
		&a.Currency,
		&status,
		&a.CartItemIDs,
		&a.Deadline,
		&a.LastCheckedAt,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Method = model.PaymentMethod(method)
	a.Status = model.AttemptStatus(status)
	return &a, nil
}
