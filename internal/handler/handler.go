package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shopcart/internal/backend"
	"shopcart/internal/middleware"
	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxJSONBytes bounds JSON request bodies.
const maxJSONBytes = 1 << 20

// SessionEnder ends sessions whose backend token stopped working.
type SessionEnder interface {
	Destroy(ctx context.Context, id string) error
}

// Responder turns service results into HTTP responses. It owns the session
// cookie so that a token rejected by the backend logs the shopper out.
type Responder struct {
	sessions   SessionEnder
	cookieName string
	logger     zerolog.Logger
}

// NewResponder creates a responder.
func NewResponder(sessions SessionEnder, cookieName string, logger zerolog.Logger) *Responder {
	return &Responder{
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger.With().Str("handler", "responder").Logger(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already out; nothing useful is left to send.
		return
	}
}

// writeError writes an error body carrying the request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []model.FieldDetail) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: chimiddleware.GetReqID(r.Context()),
		Details:       details,
	})
}

var domainStatus = map[string]int{
	model.ErrCodeInvalidJSON:      http.StatusBadRequest,
	model.ErrCodeCartItemNotFound: http.StatusNotFound,
	model.ErrCodePaymentNotFound:  http.StatusNotFound,
	model.ErrCodeNotFound:         http.StatusNotFound,
	model.ErrCodePaymentClosed:    http.StatusConflict,
	model.ErrCodeUnsupportedMedia: http.StatusUnsupportedMediaType,
	model.ErrCodeImageTooLarge:    http.StatusRequestEntityTooLarge,
	model.ErrCodeUnauthorised:     http.StatusUnauthorized,
	model.ErrCodeForbidden:        http.StatusForbidden,
}

// Fail maps err onto a status and error body.
func (s *Responder) Fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *model.ValidationError
		domainErr     *model.DomainError
		apiErr        *backend.APIError
		urlErr        *url.Error
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "Request validation failed", validationErr.Details)

	case errors.As(err, &domainErr):
		status, ok := domainStatus[domainErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, domainErr.Code, domainErr.Message, nil)

	case errors.Is(err, backend.ErrUnauthorised):
		if sess, ok := middleware.FromContext(r.Context()); ok {
			s.endSession(w, r, sess)
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message, nil)
			return
		}
		message := model.ErrUnauthorised.Message
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, message, nil)

	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, apiErr.Message, nil)
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			writeError(w, r, apiErr.StatusCode, model.ErrCodeUpstream, apiErr.Message, nil)
		default:
			s.logger.Error().Err(err).Msg("backend failure")
			writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstream, "The store service is unavailable", nil)
		}

	case errors.As(err, &urlErr), errors.Is(err, context.DeadlineExceeded):
		s.logger.Error().Err(err).Msg("backend unreachable")
		writeError(w, r, http.StatusBadGateway, model.ErrCodeUpstream, "The store service is unavailable", nil)

	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error", nil)
	}
}

func (s *Responder) endSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.sessions.Destroy(context.WithoutCancel(r.Context()), sess.ID); err != nil {
		s.logger.Error().Err(err).Msg("failed to end rejected session")
	}
	s.ClearCookie(w, r)
}

// SetCookie issues the session cookie for sess.
func (s *Responder) SetCookie(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(middleware.SessionHeader, sess.ID)
}

// ClearCookie expires the session cookie.
func (s *Responder) ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func secureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes)).Decode(dst); err != nil {
		return model.ErrInvalidJSON
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidID
	}
	return id, nil
}

// queryInt returns the integer query parameter key, or zero when absent or
// malformed. Normalisation applies the defaults.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// queryFloat returns a pointer to the float query parameter key, or nil.
func queryFloat(r *http.Request, key string) *float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// currentSession returns the session attached by the session middleware.
// Routes using it are mounted behind RequireSession.
func currentSession(r *http.Request) *session.Session {
	sess, _ := middleware.FromContext(r.Context())
	return sess
}

// optionalToken returns the caller's backend token, or "" for anonymous
// requests.
func optionalToken(r *http.Request) string {
	if sess, ok := middleware.FromContext(r.Context()); ok {
		return sess.Token
	}
	return ""
}
