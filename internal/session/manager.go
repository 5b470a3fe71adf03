package session

import (
	"context"
	"fmt"
	"time"

	"shopcart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager issues and resolves sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	secret string
	now    func() time.Time
	logger zerolog.Logger
}

// NewManager creates a session manager. secret may be empty.
func NewManager(store Store, ttl time.Duration, secret string, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		secret: secret,
		now:    time.Now,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Create starts a session for a freshly issued backend token. Fields the
// login response left empty are filled from the token claims. The session
// never outlives the token.
func (m *Manager) Create(ctx context.Context, token string, user model.User) (*Session, error) {
	claims, err := ParseClaims(token, m.secret)
	if err != nil {
		return nil, err
	}

	if user.ID == 0 {
		user.ID = claims.UserID
	}
	if user.Email == "" {
		user.Email = claims.Email
	}
	if user.Role == "" {
		user.Role = claims.Role
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	now := m.now()
	expires := now.Add(m.ttl)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(expires) {
		expires = claims.ExpiresAt.Time
	}

	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		Role:      user.Role,
		ExpiresAt: expires,
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Info().
		Str("session", shortID(s.ID)).
		Int("user_id", user.ID).
		Str("role", string(user.Role)).
		Time("expires_at", expires).
		Msg("session created")
	return s, nil
}

// Get resolves a session id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn().Err(err).Str("session", shortID(id)).Msg("failed to delete expired session")
		}
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// UpdateUser replaces the user cached on a session, keeping its expiry.
func (m *Manager) UpdateUser(ctx context.Context, s *Session, user model.User) error {
	if user.Role == "" {
		user.Role = s.Role
	}
	updated := *s
	updated.User = user
	if err := m.store.Save(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	*s = updated
	return nil
}

// Destroy ends a session.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info().Str("session", shortID(id)).Msg("session destroyed")
	return nil
}

// shortID trims a session id for logging.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
