package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"shopcart/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the fields the gateway reads from a backend token.
type Claims struct {
	UserID int        `json:"id"`
	Email  string     `json:"email,omitempty"`
	Role   model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims reads the claims of a backend token. With a secret the HS256
// signature is verified; without one the token is only decoded and the
// backend stays the authority on its validity.
func ParseClaims(token, secret string) (*Claims, error) {
	claims := &Claims{}

	if secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if claims.ExpiresAt != nil && !time.Now().Before(claims.ExpiresAt.Time) {
			return nil, ErrTokenExpired
		}
	} else {
		parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, ErrTokenExpired
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if !parsed.Valid {
			return nil, ErrInvalidToken
		}
	}

	if claims.UserID == 0 && claims.Subject != "" {
		if id, err := strconv.Atoi(claims.Subject); err == nil {
			claims.UserID = id
		}
	}
	return claims, nil
}
