// Package identity implements admin authentication.
package identity

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/auth"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Authentication errors
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid login or password")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	ErrTokenMaxRefresh    = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// Login is the only accepted admin login
	Login string
	// BootstrapPassword is accepted until a password is stored in settings
	BootstrapPassword string
}

// AuthService handles admin authentication
type AuthService struct {
	settingsRepo settings.Repository
	jwtService   *auth.JWTService
	blacklist    auth.TokenBlacklist
	limiter      *LoginLimiter
	config       AuthServiceConfig
	logger       *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	settingsRepo settings.Repository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	limiter *LoginLimiter,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		settingsRepo: settingsRepo,
		jwtService:   jwtService,
		blacklist:    blacklist,
		limiter:      limiter,
		config:       config,
		logger:       logger,
	}
}

// Login verifies the admin credentials and issues tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	if s.limiter != nil && !s.limiter.Allow(input.IP) {
		s.logger.Warn("Login throttled", zap.String("ip", input.IP))
		return nil, shared.ErrTooManyRequests
	}

	ok, err := s.verify(ctx, input.Login, input.Password)
	if err != nil {
		s.logger.Error("Failed to load settings during login", zap.Error(err))
		return nil, err
	}
	if !ok {
		s.logger.Warn("Invalid admin credentials", zap.String("login", input.Login), zap.String("ip", input.IP))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(s.config.Login)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("Admin logged in", zap.String("login", s.config.Login), zap.String("ip", input.IP))
	return toTokenResult(pair, s.config.Login), nil
}

// verify checks the login and then the stored password hash, falling back to the
// bootstrap password while no settings row or password exists
func (s *AuthService) verify(ctx context.Context, login, password string) (bool, error) {
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(s.config.Login)) == 1

	stored, err := s.settingsRepo.Get(ctx)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}

	var passwordOK bool
	if stored != nil && stored.HasPassword() {
		passwordOK = stored.VerifyPassword(password)
	} else {
		passwordOK = s.config.BootstrapPassword != "" &&
			subtle.ConstantTimeCompare([]byte(password), []byte(s.config.BootstrapPassword)) == 1
	}
	return loginOK && passwordOK, nil
}

// Refresh rotates a refresh token. The presented token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if s.blacklist != nil {
		if revoked, err := s.isRevoked(ctx, claims); err != nil {
			return nil, err
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	pair, old, err := s.jwtService.RefreshTokenPair(refreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	if s.blacklist != nil {
		if err := s.blacklist.AddToBlacklist(ctx, old.ID, old.GetRemainingTTL()); err != nil {
			s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed", zap.String("login", old.Login), zap.Int("refresh_count", old.RefreshCount+1))
	return toTokenResult(pair, old.Login), nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	listed, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return false, err
	}
	if listed {
		return true, nil
	}
	return s.blacklist.IsLoginTokenInvalidated(ctx, claims.Login, claims.GetIssuedAtTime())
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	logger.For(ctx, s.logger).Info("Admin logout", zap.String("login", input.Login))
	if s.blacklist == nil {
		return nil
	}

	if input.TokenJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			return err
		}
	}
	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err != nil {
			s.logger.Debug("Ignoring invalid refresh token on logout", zap.Error(err))
			return nil
		}
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateSessions revokes every token issued so far, used after a password change
func (s *AuthService) InvalidateSessions(ctx context.Context) error {
	if s.blacklist == nil {
		return nil
	}
	return s.blacklist.InvalidateLoginTokens(ctx, s.config.Login, s.jwtService.GetRefreshTokenExpiration())
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}

func toTokenResult(pair *auth.TokenPair, login string) *TokenResult {
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Login:                 login,
	}
}
