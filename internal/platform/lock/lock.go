// Package lock provides a best-effort mutual-exclusion lease shared by service replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when another holder owns the lease.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out named leases. release must be called once the work is done.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, err error)
}

// releaseScript deletes the key only if it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	client   redis.Cmdable
	prefix   string
	newToken func() string
	logger   *slog.Logger
}

func NewRedisLocker(client redis.Cmdable, prefix string, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{
		client:   client,
		prefix:   prefix,
		newToken: uuid.NewString,
		logger:   logger.With("component", "redis_locker"),
	}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	key := l.prefix + name
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		l.logger.InfoContext(ctx, "Lock held elsewhere", "key", key)
		return nil, ErrNotAcquired
	}
	l.logger.DebugContext(ctx, "Lock acquired", "key", key, "ttl", ttl)

	release := func(ctx context.Context) error {
		n, err := l.client.Eval(ctx, releaseScript, []string{key}, token).Int64()
		if err != nil {
			return fmt.Errorf("releasing lock %s: %w", key, err)
		}
		if n == 0 {
			l.logger.WarnContext(ctx, "Lock expired before release", "key", key)
		}
		return nil
	}
	return release, nil
}

// NoopLocker always grants the lease. Used when no Redis is configured.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
