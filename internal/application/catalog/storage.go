package catalog

import (
	"context"
	"errors"

	"github.com/greenshop/backend/internal/domain/catalog"
)

// ErrObjectExists is returned when an upload would overwrite an existing object
var ErrObjectExists = errors.New("object already exists")

// ImageStorage stores product images and serves them from a public URL
type ImageStorage interface {
	// Upload stores data under key and returns its public URL.
	// It fails with ErrObjectExists instead of overwriting.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error
}

// ProductCache caches product lists for the freshness window
type ProductCache interface {
	Get(ctx context.Context, key string) (items []catalog.Product, gen int64, ok bool, err error)
	Set(ctx context.Context, key string, gen int64, items []catalog.Product) error
	Invalidate(ctx context.Context) error
}
