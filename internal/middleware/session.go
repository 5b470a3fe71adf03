package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
)

// SessionHeader lets non-browser clients send the session id without a
// cookie. "Authorization: Session <id>" is accepted too.
const SessionHeader = "X-Session-ID"

type contextKey struct{}

// SessionResolver looks up sessions by id.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Session attaches the caller's session to the request context when one is
// presented and still valid. Requests without a session pass through;
// RequireSession and RequireRole decide whether that is acceptable.
func Session(resolver SessionResolver, cookieName string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(r, cookieName)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := resolver.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("session lookup failed")
				writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternalError, "Session store unavailable")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// RequireSession rejects requests without a valid session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose session role is not one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := FromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
				return
			}
			if !slices.Contains(roles, sess.Role) {
				writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, model.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by the Session middleware.
func FromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*session.Session)
	return sess, ok && sess != nil
}

// SessionID extracts the session id from the cookie, the X-Session-ID
// header or an "Authorization: Session" header, in that order.
func SessionID(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	scheme, id, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Session") {
		return strings.TrimSpace(id)
	}
	return ""
}
