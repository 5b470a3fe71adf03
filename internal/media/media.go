// Package media stores product images and returns the URLs the backend
// records for them.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shopcart/internal/model"

	"github.com/google/uuid"
)

// MaxImageBytes is the largest accepted image.
const MaxImageBytes = 5 << 20

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store persists an image and returns its public URL.
type Store interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// Image is an image read into memory and checked.
type Image struct {
	Data        []byte
	ContentType string
	Key         string
}

// ReadImage reads body, resolves its content type and assigns it a fresh
// object key. A missing or generic declared type is replaced by the sniffed
// one.
func ReadImage(contentType string, body io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, model.ErrImageTooLarge
	}

	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	ext, ok := extensions[ct]
	if !ok {
		return nil, model.ErrUnsupportedMedia
	}

	return &Image{
		Data:        data,
		ContentType: ct,
		Key:         uuid.NewString() + ext,
	}, nil
}

// Reader returns a fresh reader over the image bytes.
func (i *Image) Reader() io.ReadSeeker {
	return bytes.NewReader(i.Data)
}

// Allowed reports whether contentType is an accepted image type.
func Allowed(contentType string) bool {
	_, ok := extensions[strings.ToLower(contentType)]
	return ok
}
