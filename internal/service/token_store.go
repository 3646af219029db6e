package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks revoked refresh tokens until they would have expired
// anyway.
type TokenStore interface {
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type redisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore constructs a TokenStore over a Redis client.
func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}
	return s.client.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func (s *redisTokenStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	count, err := s.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func blacklistKey(jti string) string {
	return "token:blacklist:" + jti
}
