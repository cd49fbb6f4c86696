package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepo keeps a best-effort used-token marker for pending registration
// tokens. Keys are token digests; the raw token never reaches redis.
type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// TokenUsed reports whether the token has already been redeemed.
func (r *RedisRepo) TokenUsed(ctx context.Context, token string) (bool, error) {
	const op = "storage.redis.TokenUsed"

	n, err := r.client.Exists(ctx, usedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// MarkTokenUsed records a redeemed token. The marker only needs to outlive
// the token itself, so it expires after ttl.
func (r *RedisRepo) MarkTokenUsed(ctx context.Context, token string, ttl time.Duration) error {
	const op = "storage.redis.MarkTokenUsed"

	err := r.client.SetNX(ctx, usedKey(token), "used", ttl).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}

func usedKey(token string) string {
	digest := sha256.Sum256([]byte(token))

	return fmt.Sprintf("register:used:%s", hex.EncodeToString(digest[:]))
}
