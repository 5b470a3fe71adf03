package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is the checkout payment option chosen by the shopper.
type PaymentMethod string

const (
	MethodCredit PaymentMethod = "credit"
	MethodDebit  PaymentMethod = "debit"
	MethodQR     PaymentMethod = "qr"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == MethodCredit || m == MethodDebit || m == MethodQR
}

// IsCard reports whether m is settled through a card intent.
func (m PaymentMethod) IsCard() bool {
	return m == MethodCredit || m == MethodDebit
}

// PaymentIntentRequest is the payload for creating a payment intent.
type PaymentIntentRequest struct {
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Metadata PaymentMetadata `json:"metadata"`
}

// PaymentMetadata links a payment intent to the order it pays for.
type PaymentMetadata struct {
	OrderIDs int `json:"orderIds"`
}

// QRPaymentIntent is the backend's answer to a PromptPay intent request.
type QRPaymentIntent struct {
	PaymentID string `json:"paymentId"`
	QRURL     string `json:"qrUrl"`
}

// CardPaymentIntent is the backend's answer to a card intent request.
type CardPaymentIntent struct {
	PaymentID    string `json:"paymentId"`
	ClientSecret string `json:"clientSecret"`
}

// QR payment provider statuses.
const (
	QRStatusSucceeded = "succeeded"
	QRStatusCanceled  = "canceled"
)

// QRStatus is the provider status of a QR payment.
type QRStatus struct {
	Status  string `json:"status"`
	Success *bool  `json:"success,omitempty"`
}

// AttemptStatus is the gateway-side state of a payment attempt.
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "PENDING"
	AttemptCompleted AttemptStatus = "COMPLETED"
	AttemptExpired   AttemptStatus = "EXPIRED"
	AttemptFailed    AttemptStatus = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s AttemptStatus) Terminal() bool {
	return s != AttemptPending
}

// PaymentAttempt tracks a checkout payment until it settles or times out.
type PaymentAttempt struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	PaymentID     string        `json:"paymentId" db:"payment_id"`
	OrderID       int           `json:"orderId" db:"order_id"`
	UserID        int           `json:"userId" db:"user_id"`
	SessionID     string        `json:"-" db:"session_id"`
	Method        PaymentMethod `json:"method" db:"method"`
	Amount        int64         `json:"amount" db:"amount"`
	Currency      string        `json:"currency" db:"currency"`
	Status        AttemptStatus `json:"status" db:"status"`
	CartItemIDs   []int64       `json:"cartItemIds" db:"cart_item_ids"`
	Deadline      time.Time     `json:"deadline" db:"deadline"`
	LastCheckedAt *time.Time    `json:"lastCheckedAt,omitempty" db:"last_checked_at"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// Remaining returns the time left before the attempt expires.
func (a *PaymentAttempt) Remaining(now time.Time) time.Duration {
	if a.Status.Terminal() || now.After(a.Deadline) {
		return 0
	}
	return a.Deadline.Sub(now)
}

// CheckoutRequest is the shopper's checkout submission.
type CheckoutRequest struct {
	CartItemIDs   []int         `json:"cartItemIds"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// CheckoutResult is returned once an order and its payment intent exist.
type CheckoutResult struct {
	Order        *Order        `json:"order"`
	Totals       Totals        `json:"totals"`
	Method       PaymentMethod `json:"paymentMethod"`
	PaymentID    string        `json:"paymentId"`
	QRURL        string        `json:"qrUrl,omitempty"`
	ClientSecret string        `json:"clientSecret,omitempty"`
	ExpiresAt    *time.Time    `json:"expiresAt,omitempty"`
}

// PaymentStatusView reports an attempt's progress to the shopper.
type PaymentStatusView struct {
	PaymentID        string        `json:"paymentId"`
	OrderID          int           `json:"orderId"`
	Status           AttemptStatus `json:"status"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
}
