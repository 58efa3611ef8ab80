// Package settings implements shop settings management.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned while no settings row exists
var ErrNotConfigured = shared.NewDomainError("NOT_FOUND", "Shop settings are not configured")

// SessionInvalidator revokes admin sessions after a password change
type SessionInvalidator interface {
	InvalidateSessions(ctx context.Context) error
}

// SettingsService reads and writes the single settings row
type SettingsService struct {
	repo     settings.Repository
	sessions SessionInvalidator
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService. sessions may be nil.
func NewSettingsService(repo settings.Repository, sessions SessionInvalidator, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, sessions: sessions, logger: logger}
}

// Get returns the admin view of the settings
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	resp := ToSettingsResponse(stored)
	return &resp, nil
}

// Public returns the contact details shown in the storefront.
// Empty values are returned while the shop is not configured.
func (s *SettingsService) Public(ctx context.Context) (PublicSettings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return PublicSettings{}, nil
		}
		return PublicSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return PublicSettings{
		ShopName:     stored.ShopName,
		ContactPhone: stored.ContactPhone,
		ContactEmail: stored.ContactEmail,
		Telegram:     stored.Telegram,
	}, nil
}

// Save creates the row on first use and otherwise updates the present fields.
// A new password revokes every issued admin token.
func (s *SettingsService) Save(ctx context.Context, req SaveSettingsRequest) (*SettingsResponse, error) {
	patch := req.ToPatch()

	stored, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		stored, err = settings.New(patch)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, stored); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		s.logger.Info("Settings created", zap.String("settings_id", stored.ID.String()))
	case err != nil:
		return nil, fmt.Errorf("failed to load settings: %w", err)
	default:
		if err := patch.Validate(); err != nil {
			return nil, err
		}
		stored, err = s.repo.Update(ctx, stored.ID, patch)
		if err != nil {
			return nil, fmt.Errorf("failed to save settings: %w", err)
		}
		logger.For(ctx, s.logger).Info("Settings updated", zap.String("settings_id", stored.ID.String()))
	}

	if patch.AdminPassword != nil && s.sessions != nil {
		if err := s.sessions.InvalidateSessions(ctx); err != nil {
			s.logger.Error("Failed to revoke admin sessions after password change", zap.Error(err))
		}
	}

	resp := ToSettingsResponse(stored)
	return &resp, nil
}
