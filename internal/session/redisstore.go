// ABOUTME: Persists the session token in Redis
// ABOUTME: Lets several terminals on shared machines reuse one login profile

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token under tictactoe:session:<profile>
type RedisStore struct {
	conn *redis.Client
	key  string
}

// NewRedisStore connects to addr and verifies the connection
func NewRedisStore(ctx context.Context, addr, profile string) (*RedisStore, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(conn, profile), nil
}

// NewRedisStoreFromClient wraps an existing connection
func NewRedisStoreFromClient(conn *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{conn: conn, key: "tictactoe:session:" + profile}
}

// Load reads the persisted token
func (rs *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := rs.conn.Get(ctx, rs.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return token, nil
}

// Save stores the token without expiry; the authority decides validity
func (rs *RedisStore) Save(ctx context.Context, token string) error {
	if err := rs.conn.Set(ctx, rs.key, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the persisted token
func (rs *RedisStore) Clear(ctx context.Context) error {
	if err := rs.conn.Del(ctx, rs.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close releases the connection
func (rs *RedisStore) Close() error {
	return rs.conn.Close()
}
