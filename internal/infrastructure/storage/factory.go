package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	infraconfig "github.com/greenshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New creates the image storage selected by cfg.Driver
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (catalogapp.ImageStorage, error) {
	switch cfg.Driver {
	case "", "stub":
		logger.Warn("Using in-memory stub image storage; uploads are lost on restart")
		return NewStubObjectStorage(cfg.PublicBaseURL), nil
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if cfg.CreateBucket {
			if err := s.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}
