// Package auth issues and validates admin JWTs and tracks revoked tokens.
package auth

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// RoleAdmin is the only role the shop knows
const RoleAdmin = "admin"

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingLogin       = errors.New("missing login in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims are the admin token claims. Refresh tokens leave Role empty and
// count how many times the chain has been rotated.
type Claims struct {
	jwt.RegisteredClaims
	Login        string    `json:"login"`
	Role         string    `json:"role"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetRemainingTTL is how long the token stays valid, never negative
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(0, time.Until(c.ExpiresAt.Time))
}

type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// keyring is the secret and lifetime of one token type
type keyring struct {
	secret []byte
	ttl    time.Duration
}

// JWTService signs HS256 tokens. Refresh tokens use their own secret when
// one is configured.
type JWTService struct {
	access, refresh keyring
	issuer          string
	maxRotations    int
	now             func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		access:       keyring{secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:      keyring{secret: []byte(cmp.Or(cfg.RefreshSecret, cfg.Secret)), ttl: cfg.RefreshTokenExpiration},
		issuer:       cfg.Issuer,
		maxRotations: cfg.MaxRefreshCount,
		now:          time.Now,
	}
}

// GetRefreshTokenExpiration bounds how long a login-wide revocation must be kept
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.refresh.ttl
}

func (s *JWTService) GenerateTokenPair(login string) (*TokenPair, error) {
	return s.issue(login, 0)
}

// RefreshTokenPair trades a refresh token for a new pair one rotation
// further along; past MaxRefreshCount the admin has to log in again.
// The returned claims belong to the consumed token.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, *Claims, error) {
	old, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if s.maxRotations > 0 && old.RefreshCount >= s.maxRotations {
		return nil, nil, ErrMaxRefreshExceeded
	}
	pair, err := s.issue(old.Login, old.RefreshCount+1)
	if err != nil {
		return nil, nil, err
	}
	return pair, old, nil
}

func (s *JWTService) issue(login string, rotation int) (*TokenPair, error) {
	now := s.now()
	access := Claims{Login: login, Role: RoleAdmin, TokenType: TokenTypeAccess}
	refresh := Claims{Login: login, TokenType: TokenTypeRefresh, RefreshCount: rotation}
	access.RegisteredClaims = s.registered(login, now, now.Add(s.access.ttl))
	refresh.RegisteredClaims = s.registered(login, now, now.Add(s.refresh.ttl))

	accessToken, err := sign(s.access.secret, access)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := sign(s.refresh.secret, refresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  access.ExpiresAt.Time,
		RefreshTokenExpiresAt: refresh.ExpiresAt.Time,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(login string, now, expires time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   login,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(expires),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func sign(secret []byte, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(secret)
}

func (s *JWTService) ValidateAccessToken(raw string) (*Claims, error) {
	return s.parse(raw, s.access, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(raw string) (*Claims, error) {
	return s.parse(raw, s.refresh, TokenTypeRefresh)
}

func (s *JWTService) parse(raw string, key keyring, want TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key.secret, nil })
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidClaims
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	case claims.Login == "":
		return nil, ErrMissingLogin
	}
	return claims, nil
}
