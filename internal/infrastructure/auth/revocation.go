package auth

import (
	"context"
	"maps"
	"sync"
	"time"
)

// TokenBlacklist revokes admin tokens before they expire: single tokens by
// jti on logout, and every token of a login issued before a cutoff.
type TokenBlacklist interface {
	// AddToBlacklist revokes jti for ttl, normally the token's remaining
	// lifetime. A non-positive ttl is a no-op.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	// InvalidateLoginTokens sets the cutoff for login to now
	InvalidateLoginTokens(ctx context.Context, login string, ttl time.Duration) error
	// IsLoginTokenInvalidated compares whole seconds, the resolution of iat
	IsLoginTokenInvalidated(ctx context.Context, login string, issuedAt time.Time) (bool, error)
}

// InMemoryTokenBlacklist serves a single instance; nothing is shared
// between processes.
type InMemoryTokenBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
	cutoffs map[string]int64     // login -> unix seconds
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revoked: map[string]time.Time{},
		cutoffs: map[string]int64{},
	}
}

func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire(time.Now())
	b.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.revoked[jti]
	return ok && time.Now().Before(until), nil
}

func (b *InMemoryTokenBlacklist) InvalidateLoginTokens(_ context.Context, login string, _ time.Duration) error {
	b.mu.Lock()
	b.cutoffs[login] = time.Now().Unix()
	b.mu.Unlock()
	return nil
}

func (b *InMemoryTokenBlacklist) IsLoginTokenInvalidated(_ context.Context, login string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff, ok := b.cutoffs[login]
	return ok && issuedAt.Unix() < cutoff, nil
}

// Len counts unexpired revoked tokens
func (b *InMemoryTokenBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire(time.Now())
	return len(b.revoked)
}

func (b *InMemoryTokenBlacklist) expire(now time.Time) {
	maps.DeleteFunc(b.revoked, func(_ string, until time.Time) bool { return !now.Before(until) })
}
