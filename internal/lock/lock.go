// Package lock serialises outbound writes of one zinc type across service
// instances. The database guard row is authoritative; this lock only makes
// instances queue before they open a transaction.
package lock

import (
	"context"
	"fmt"
	"time"

	"zinc-warehouse/internal/logging"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	keyPrefix   = "zinc-stock:"
	lockTTL     = 30 * time.Second
	waitTimeout = 10 * time.Second
	retryEvery  = 50 * time.Millisecond
)

type Locker interface {
	// Acquire blocks until the lock for key is held or ctx ends. The returned
	// release func is always safe to call.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type noop struct{}

// Noop is the locker used when no Redis is configured.
func Noop() Locker { return noop{} }

func (noop) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

type RedisLocker struct {
	client *redislock.Client
	log    *logrus.Logger
}

func NewRedis(rdb *redis.Client, log *logrus.Logger) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), log: log}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	l, err := r.client.Obtain(waitCtx, keyPrefix+key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryEvery),
	})
	if err != nil {
		return func() {}, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		if err := l.Release(context.Background()); err != nil && err != redislock.ErrLockNotHeld {
			logging.LogError(r.log, "lock", "Acquire", "release", key, err)
		}
	}, nil
}
