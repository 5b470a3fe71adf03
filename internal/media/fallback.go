package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"shopcart/internal/model"

	"github.com/rs/zerolog"
)

// FallbackStore tries the primary store first and writes locally when it
// fails or is disabled.
type FallbackStore struct {
	primary        Store
	local          Store
	primaryEnabled bool
	logger         zerolog.Logger
}

// NewFallbackStore creates a fallback store. primary may be nil.
func NewFallbackStore(primary, local Store, primaryEnabled bool, logger zerolog.Logger) *FallbackStore {
	return &FallbackStore{
		primary:        primary,
		local:          local,
		primaryEnabled: primaryEnabled,
		logger:         logger.With().Str("component", "fallback-media-store").Logger(),
	}
}

// Put stores the image, preferring the primary store.
func (s *FallbackStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if !s.primaryEnabled || s.primary == nil {
		s.logger.Debug().
			Bool("primary_enabled", s.primaryEnabled).
			Bool("has_primary", s.primary != nil).
			Msg("primary media store disabled, using local store")
		return s.local.Put(ctx, name, contentType, body)
	}

	// The body is buffered so the local store can read it again.
	data, err := io.ReadAll(io.LimitReader(body, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image %s: %w", name, err)
	}

	url, err := s.primary.Put(ctx, name, contentType, bytes.NewReader(data))
	if err == nil {
		return url, nil
	}
	if isClientError(err) {
		return "", err
	}

	s.logger.Warn().
		Err(err).
		Str("name", name).
		Msg("failed to store image in primary store, falling back to local store")
	return s.local.Put(ctx, name, contentType, bytes.NewReader(data))
}

// isClientError reports whether err is about the image itself, in which case
// retrying locally cannot help.
func isClientError(err error) bool {
	return errors.Is(err, model.ErrUnsupportedMedia) || errors.Is(err, model.ErrImageTooLarge)
}
