package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

// RedisTokenRevoker keeps revoked token ids in Redis with a TTL equal to the
// token's remaining lifetime.
type RedisTokenRevoker struct {
	client *redis.Client
}

func NewRedisTokenRevoker(client *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client}
}

func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, revokedTokenPrefix+jti, 1, ttl).Err()
}

func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
