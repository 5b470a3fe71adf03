package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalStore writes images to a directory served by the gateway.
type LocalStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStore creates a store rooted at dir. URLs are baseURL + "/" + key.
func NewLocalStore(dir, baseURL string, logger zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "local-media-store").Logger(),
	}, nil
}

// Put writes the image under a new key.
func (s *LocalStore) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	img, err := ReadImage(contentType, body)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, img.Key)
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write image")
		return "", fmt.Errorf("failed to write image %s: %w", name, err)
	}

	s.logger.Info().
		Str("name", name).
		Str("key", img.Key).
		Int("bytes", len(img.Data)).
		Msg("image stored locally")
	return s.baseURL + "/" + img.Key, nil
}

// Handler serves stored images. Mount it under the store's base URL path.
func (s *LocalStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}
