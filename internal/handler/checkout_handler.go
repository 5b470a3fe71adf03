package handler

import (
	"net/http"

	"shopcart/internal/model"
	"shopcart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CheckoutHandler places orders and reports payment progress.
type CheckoutHandler struct {
	service service.CheckoutService
	resp    *Responder
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, resp *Responder, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		resp:    resp,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// PlaceOrder handles POST /api/checkout.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), currentSession(r), req)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// PaymentStatus handles GET /api/checkout/payments/{paymentID}. Clients
// poll it while the shopper scans the QR code.
func (h *CheckoutHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.PaymentStatus(r.Context(), currentSession(r), chi.URLParam(r, "paymentID"))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ConfirmCard handles POST /api/checkout/payments/{paymentID}/confirm,
// sent once the card provider has accepted the payment.
func (h *CheckoutHandler) ConfirmCard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ConfirmCard(r.Context(), currentSession(r), chi.URLParam(r, "paymentID"))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
