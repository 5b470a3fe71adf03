// Package session keeps the gateway's record of logged-in shoppers: the
// backend token, the user it belongs to and when the session ends.
package session

import (
	"context"
	"errors"
	"time"

	"shopcart/internal/model"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is a logged-in shopper.
type Session struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	Role      model.Role `json:"role"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Expired reports whether the session has ended at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
