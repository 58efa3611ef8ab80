package storefront

import (
	"context"

	"github.com/greenshop/backend/internal/application/settings"
	"github.com/greenshop/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// PublicSettingsSource provides the storefront contact details
type PublicSettingsSource interface {
	Public(ctx context.Context) (settings.PublicSettings, error)
}

// BootstrapService assembles the first payload the storefront loads
type BootstrapService struct {
	settings PublicSettingsSource
	logger   *zap.Logger
}

// NewBootstrapService creates a new BootstrapService
func NewBootstrapService(settings PublicSettingsSource, logger *zap.Logger) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{settings: settings, logger: logger}
}

// Bootstrap returns shop settings, taxonomy and filter defaults. A settings failure
// degrades to empty contact details so the storefront still renders.
func (s *BootstrapService) Bootstrap(ctx context.Context, sessionID string) *BootstrapResponse {
	public, err := s.settings.Public(ctx)
	if err != nil {
		s.logger.Warn("Failed to load public settings", zap.Error(err))
		public = settings.PublicSettings{}
	}
	return &BootstrapResponse{
		Settings:          public,
		Taxonomy:          catalog.Taxonomy(),
		Categories:        catalog.Categories,
		Conditions:        catalog.Conditions,
		SortKeys:          catalog.SortKeys,
		DefaultPriceRange: catalog.DefaultPriceRange(),
		SessionID:         sessionID,
	}
}
