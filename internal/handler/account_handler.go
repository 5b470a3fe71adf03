package handler

import (
	"net/http"
	"time"

	"shopcart/internal/model"
	"shopcart/internal/service"

	"github.com/rs/zerolog"
)

// LoginResponse is returned when a session starts. Browsers use the cookie;
// other clients send SessionID back in the X-Session-ID header.
type LoginResponse struct {
	SessionID string     `json:"sessionId"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// AccountHandler handles authentication and the shopper's profile.
type AccountHandler struct {
	service service.AccountService
	resp    *Responder
	logger  zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(service service.AccountService, resp *Responder, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		resp:    resp,
		logger:  logger.With().Str("handler", "account").Logger(),
	}
}

// Register handles POST /api/auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	sess, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	h.resp.SetCookie(w, r, sess)
	writeJSON(w, http.StatusOK, LoginResponse{
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

// Logout handles POST /api/auth/logout. It succeeds without a session.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := currentSession(r); sess != nil {
		if err := h.service.Logout(r.Context(), sess); err != nil {
			h.resp.Fail(w, r, err)
			return
		}
	}
	h.resp.ClearCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	msg, err := h.service.ForgotPassword(r.Context(), req)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// ResetPassword handles PATCH /api/auth/reset-password.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	msg, err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// Profile handles GET /api/me.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), currentSession(r))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/me.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update model.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), currentSession(r), update)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword handles PATCH /api/me/password.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), currentSession(r), req); err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Orders handles GET /api/me/orders?page=&pageSize=.
func (h *AccountHandler) Orders(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Orders(r.Context(), currentSession(r), queryInt(r, "page"), queryInt(r, "pageSize"))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
