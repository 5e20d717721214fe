// Package redislock implements lock.Locker on Redis so generation requests
// are serialized across server instances.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/lock"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "scholar:lock:"

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires locks with SET NX PX and polls until the key is free.
type Locker struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

var _ lock.Locker = (*Locker)(nil)

// New creates a Locker. ttl bounds how long a crashed holder can block others.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) (*Locker, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locker{
		client:       client,
		ttl:          ttl,
		pollInterval: 100 * time.Millisecond,
		logger:       logger.With("component", "redis_lock"),
	}, nil
}

// Connect parses a redis:// URL, creates a client and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Lock implements lock.Locker.
func (l *Locker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", lock.ErrNotAcquired, key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", lock.ErrNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// The caller's context may already be done; release on a fresh one.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release lock", "key", key, "error", err)
		}
	}, nil
}
