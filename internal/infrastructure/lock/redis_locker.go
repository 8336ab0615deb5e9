package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockTimeout indicates the lock could not be acquired before the
// acquisition deadline
var ErrLockTimeout = errors.New("lock: acquisition timed out")

// RedisLockerConfig holds the Redis locker tuning knobs
type RedisLockerConfig struct {
	// KeyPrefix namespaces lock keys in a shared Redis
	KeyPrefix string
	// TTL is the lock lifetime; a crashed holder frees the key after it
	TTL time.Duration
	// AcquireTimeout bounds how long Lock polls a held key
	AcquireTimeout time.Duration
	// RetryInterval is the poll interval while a key is held
	RetryInterval time.Duration
}

// DefaultRedisLockerConfig returns the default locker configuration
func DefaultRedisLockerConfig() RedisLockerConfig {
	return RedisLockerConfig{
		KeyPrefix:      "unifyd:lock:",
		TTL:            30 * time.Second,
		AcquireTimeout: 10 * time.Second,
		RetryInterval:  50 * time.Millisecond,
	}
}

// releaseScript deletes the key only when it still holds this locker's token,
// so an expired-and-reacquired lock is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a distributed key locker built on SETNX with TTL.
type RedisLocker struct {
	client *redis.Client
	config RedisLockerConfig
	logger *zap.Logger
}

// NewRedisLocker creates a new RedisLocker with an existing client
func NewRedisLocker(client *redis.Client, config RedisLockerConfig, logger *zap.Logger) *RedisLocker {
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisLockerConfig().KeyPrefix
	}
	if config.TTL <= 0 {
		config.TTL = DefaultRedisLockerConfig().TTL
	}
	if config.AcquireTimeout <= 0 {
		config.AcquireTimeout = DefaultRedisLockerConfig().AcquireTimeout
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultRedisLockerConfig().RetryInterval
	}
	return &RedisLocker{
		client: client,
		config: config,
		logger: logger.Named("lock"),
	}
}

// Lock acquires the key, polling while another holder has it, and returns the
// unlock closure.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.config.KeyPrefix + key
	token := uuid.NewString()

	deadline := time.Now().Add(l.config.AcquireTimeout)
	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.config.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("lock: acquiring %q: %w", key, err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %q", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.config.RetryInterval):
		}
	}

	return func() {
		// Release runs on a fresh context: the caller's may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn("Failed to release lock, TTL will expire it",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}, nil
}
