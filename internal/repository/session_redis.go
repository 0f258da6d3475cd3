package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisSessionPrefix = "airsense:session:"
	redisScanCount     = 100
)

// SessionRedis keeps every session value under its own key, so each value
// expires on its own TTL.
type SessionRedis struct {
	client *redis.Client
}

func NewSessionRedis(client *redis.Client) *SessionRedis {
	return &SessionRedis{client: client}
}

var _ SessionStore = (*SessionRedis)(nil)

// ConnectRedis builds a client and fails fast when the server is unreachable.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %q: %w", addr, err)
	}
	return client, nil
}

// valueKey is airsense:session:<sid>:<key>.
func valueKey(sessionID, key string) string {
	return redisSessionPrefix + sessionID + ":" + key
}

func (r *SessionRedis) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, valueKey(sessionID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get session value %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes key with its own lifetime; other values of the session keep theirs.
func (r *SessionRedis) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if err := r.client.Set(ctx, valueKey(sessionID, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("set session value %q: %w", key, err)
	}
	return nil
}

func (r *SessionRedis) Delete(ctx context.Context, sessionID, key string) error {
	if err := r.client.Del(ctx, valueKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("delete session value %q: %w", key, err)
	}
	return nil
}

// Destroy removes every value of the session.
func (r *SessionRedis) Destroy(ctx context.Context, sessionID string) error {
	var cursor uint64
	match := valueKey(sessionID, "*")
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			return fmt.Errorf("scan session keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Purge is a no-op: Redis expires values on its own.
func (r *SessionRedis) Purge(context.Context) (int64, error) { return 0, nil }
