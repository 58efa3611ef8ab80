package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationPrefix = "token:blacklist:"

// RedisTokenBlacklist keeps revocations in Redis so every instance sees
// them. Keys expire with the tokens they revoke.
type RedisTokenBlacklist struct {
	rdb redis.UniversalClient
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{rdb: client}
}

func jtiKey(jti string) string     { return revocationPrefix + "jti:" + jti }
func loginKey(login string) string { return revocationPrefix + "login:" + login }

func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.rdb.Set(ctx, jtiKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return n == 1, nil
}

func (b *RedisTokenBlacklist) InvalidateLoginTokens(ctx context.Context, login string, ttl time.Duration) error {
	if err := b.rdb.Set(ctx, loginKey(login), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("set login cutoff: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsLoginTokenInvalidated(ctx context.Context, login string, issuedAt time.Time) (bool, error) {
	cutoff, err := b.rdb.Get(ctx, loginKey(login)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("lookup login cutoff: %w", err)
	}
	return issuedAt.Unix() < cutoff, nil
}
