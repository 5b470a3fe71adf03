package backend

import (
	"context"
	"fmt"
	"net/url"

	"shopcart/internal/model"
)

// CreateQRPayment creates a PromptPay intent.
func (c *Client) CreateQRPayment(ctx context.Context, token string, req model.PaymentIntentRequest) (*model.QRPaymentIntent, error) {
	var intent model.QRPaymentIntent
	if err := c.post(ctx, "/payment/stripe/create-payment-promptpay", token, req, &intent); err != nil {
		return nil, err
	}
	if intent.PaymentID == "" {
		return nil, fmt.Errorf("backend returned a QR intent without a payment id")
	}
	return &intent, nil
}

// CreateCardPayment creates a card intent.
func (c *Client) CreateCardPayment(ctx context.Context, token string, req model.PaymentIntentRequest) (*model.CardPaymentIntent, error) {
	var intent model.CardPaymentIntent
	if err := c.post(ctx, "/payment/stripe/create-payment-card", token, req, &intent); err != nil {
		return nil, err
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("backend returned a card intent without a client secret")
	}
	return &intent, nil
}

// QRPaymentStatus returns the provider status of a QR payment.
func (c *Client) QRPaymentStatus(ctx context.Context, token, paymentID string) (*model.QRStatus, error) {
	var status model.QRStatus
	if err := c.get(ctx, "/payment/qr/status/"+url.PathEscape(paymentID), token, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
