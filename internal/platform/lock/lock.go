package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"backoffice/internal/platform/apperror"
)

// ErrNotObtained is returned when another holder owns the key.
var ErrNotObtained = apperror.ErrBusy

// Locker serializes work on a key across server instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type RedisLocker struct {
	client *redislock.Client
	log    *zap.Logger
}

func NewRedis(rdb *redis.Client, log *zap.Logger) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lk, err := l.client.Obtain(ctx, "lock:"+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// release on a fresh context so a cancelled request still frees the key
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// Nop grants every lock. Used when Redis is not configured.
type Nop struct{}

func (Nop) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}
