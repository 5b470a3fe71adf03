package handler

import (
	"context"
	"net/http"

	"shopcart/internal/model"
	"shopcart/internal/service"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
)

// CartHandler handles the shopper's cart.
type CartHandler struct {
	service service.CartService
	resp    *Responder
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, resp *Responder, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		resp:    resp,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

type quantityBody struct {
	Quantity int `json:"quantity"`
}

type amountBody struct {
	Amount int `json:"amount"`
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), currentSession(r))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items. Adding a product already in the
// cart increments its line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddCartItem
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	if err := model.Validate(req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	view, err := h.service.AddOrUpdate(r.Context(), currentSession(r), req.ProductID, req.Quantity)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetQuantity handles PATCH /api/cart/items/{id}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	var body quantityBody
	if err := decodeJSON(r, &body); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	view, err := h.service.SetQuantity(r.Context(), currentSession(r), id, body.Quantity)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Increment handles POST /api/cart/items/{id}/increment. An empty body
// means one.
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.service.Increment)
}

// Decrement handles POST /api/cart/items/{id}/decrement.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.service.Decrement)
}

type changeFunc func(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error)

func (h *CartHandler) change(w http.ResponseWriter, r *http.Request, apply changeFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	body := amountBody{Amount: 1}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			h.resp.Fail(w, r, err)
			return
		}
	}

	view, err := apply(r.Context(), currentSession(r), id, body.Amount)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Remove handles DELETE /api/cart/items/{id}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	view, err := h.service.Remove(r.Context(), currentSession(r), id)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), currentSession(r)); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
