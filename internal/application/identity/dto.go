package identity

import (
	"time"
)

// LoginInput contains the input for admin login
type LoginInput struct {
	Login    string
	Password string
	IP       string // Client IP for throttling
}

// TokenResult contains an issued token pair
type TokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	Login                 string
}

// LogoutInput contains the input for admin logout
type LogoutInput struct {
	Login        string
	TokenJTI     string        // access token id to revoke
	TokenTTL     time.Duration // remaining lifetime of the access token
	RefreshToken string        // optional, revoked as well when valid
}
