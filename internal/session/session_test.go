package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"shopcart/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsExpiringIn(d time.Duration) Claims {
	return Claims{
		UserID: 7,
		Email:  "ann@example.com",
		Role:   model.RoleMerchant,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(d)),
		},
	}
}

func TestParseClaims(t *testing.T) {
	valid := signToken(t, testSecret, claimsExpiringIn(time.Hour))
	expired := signToken(t, testSecret, claimsExpiringIn(-time.Hour))
	otherKey := signToken(t, "another-secret", claimsExpiringIn(time.Hour))
	bySubject := signToken(t, testSecret, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "15"}})

	tests := []struct {
		name         string
		token        string
		secret       string
		expectedErr  error
		expectedID   int
		expectedRole model.Role
	}{
		{name: "Verified token", token: valid, secret: testSecret, expectedID: 7, expectedRole: model.RoleMerchant},
		{name: "Unverified decode", token: otherKey, secret: "", expectedID: 7, expectedRole: model.RoleMerchant},
		{name: "Wrong signature", token: otherKey, secret: testSecret, expectedErr: ErrInvalidToken},
		{name: "Expired verified", token: expired, secret: testSecret, expectedErr: ErrTokenExpired},
		{name: "Expired unverified", token: expired, secret: "", expectedErr: ErrTokenExpired},
		{name: "Garbage", token: "not-a-token", secret: "", expectedErr: ErrInvalidToken},
		{name: "User id from subject", token: bySubject, secret: testSecret, expectedID: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseClaims(tt.token, tt.secret)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, claims.UserID)
			assert.Equal(t, tt.expectedRole, claims.Role)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	s := &Session{ID: "abc", Token: "tok", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	got.Token = "mutated"
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", again.Token, "store must hand out copies")

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Save(ctx, &Session{ID: "def", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Delete(ctx, "def"))
	_, err = store.Get(ctx, "def")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Fills user from claims and caps expiry at token exp", func(t *testing.T) {
		store := NewMemoryStore()
		manager := NewManager(store, 24*time.Hour, testSecret, zerolog.Nop())
		token := signToken(t, testSecret, claimsExpiringIn(time.Hour))

		s, err := manager.Create(ctx, token, model.User{Name: "Ann"})
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, 7, s.User.ID)
		assert.Equal(t, "ann@example.com", s.User.Email)
		assert.Equal(t, model.RoleMerchant, s.Role)
		assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 2*time.Second)

		stored, err := manager.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, token, stored.Token)
	})

	t.Run("Session TTL wins over later token exp", func(t *testing.T) {
		manager := NewManager(NewMemoryStore(), 10*time.Minute, testSecret, zerolog.Nop())
		token := signToken(t, testSecret, claimsExpiringIn(time.Hour))

		s, err := manager.Create(ctx, token, model.User{ID: 3, Role: model.RoleUser})
		require.NoError(t, err)
		assert.Equal(t, 3, s.User.ID)
		assert.Equal(t, model.RoleUser, s.Role)
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), s.ExpiresAt, 2*time.Second)
	})

	t.Run("Defaults role to USER", func(t *testing.T) {
		manager := NewManager(NewMemoryStore(), time.Hour, "", zerolog.Nop())
		token := signToken(t, testSecret, Claims{UserID: 9})

		s, err := manager.Create(ctx, token, model.User{})
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, s.Role)
	})

	t.Run("Rejects expired token", func(t *testing.T) {
		manager := NewManager(NewMemoryStore(), time.Hour, "", zerolog.Nop())
		token := signToken(t, testSecret, claimsExpiringIn(-time.Minute))

		_, err := manager.Create(ctx, token, model.User{})
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestManager_GetAndDestroy(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(NewMemoryStore(), time.Hour, "", zerolog.Nop())

	_, err := manager.Get(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s, err := manager.Create(ctx, signToken(t, testSecret, Claims{UserID: 1}), model.User{})
	require.NoError(t, err)

	require.NoError(t, manager.UpdateUser(ctx, s, model.User{ID: 1, Name: "Renamed"}))
	assert.Equal(t, "Renamed", s.User.Name)
	assert.Equal(t, model.RoleUser, s.User.Role)

	stored, err := manager.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.User.Name)

	require.NoError(t, manager.Destroy(ctx, s.ID))
	_, err = manager.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type deleteFailingStore struct {
	*MemoryStore
}

func (deleteFailingStore) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestManager_GetExpiredLogsDeleteFailure(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	manager := NewManager(deleteFailingStore{NewMemoryStore()}, time.Hour, "", zerolog.New(&logs))

	s, err := manager.Create(ctx, signToken(t, testSecret, Claims{UserID: 1}), model.User{})
	require.NoError(t, err)

	manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = manager.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Contains(t, logs.String(), "failed to delete expired session")
	assert.Contains(t, logs.String(), "store unavailable")
}
