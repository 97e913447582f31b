package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a redis server. Keys are
// <prefix>revoked:<jti> with an EX expiry, so several server instances
// can share one revocation list.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis dials cfg.Addr and checks the connection with PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	r, err := NewRedis(ctx, client, cfg.Prefix)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return r, nil
}

// NewRedis wraps an existing client. The store owns the client and closes
// it on Close.
func NewRedis(ctx context.Context, client *redis.Client, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis: client cannot be nil")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: connection failed: %w", err)
	}

	return &Redis{client: client, prefix: prefix + KeyPrefix}, nil
}

// Revoke implements Store. A zero ttl stores the key without EX.
func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := checkArgs(jti, ttl); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+jti, "1", ttl).Err(); err != nil {
		return r.wrap("revoke", err)
	}
	return nil
}

// IsRevoked implements Store.
func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, r.wrap("lookup", err)
	}
	return n > 0, nil
}

// Len implements Store by scanning the key prefix.
func (r *Redis) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	const batchSize = 256

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", batchSize).Result()
		if err != nil {
			return 0, r.wrap("scan", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// Close closes the client.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("redis: close: %w", err)
	}
	return nil
}

func (r *Redis) wrap(op string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("redis: %s: %w", op, err)
}
