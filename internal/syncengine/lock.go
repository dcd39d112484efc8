package syncengine

import (
	"context"
	"time"

	"did-optimizer/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// RunLocker prevents overlapping engine passes. Two concurrent passes would
// read the same checkpoint and double-report the same window.
type RunLocker interface {
	Acquire(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) error
}

const runLockKey = "did-optimizer:sync:runlock"

// RedisRunLock is the production locker; the TTL bounds how long a crashed
// pass can block its successors.
type RedisRunLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRunLock(rdb *redis.Client, ttl time.Duration) *RedisRunLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRunLock{rdb: rdb, ttl: ttl}
}

func (l *RedisRunLock) Acquire(ctx context.Context, token string) (bool, error) {
	return utils.AcquireRunLock(ctx, l.rdb, runLockKey, token, l.ttl)
}

func (l *RedisRunLock) Release(ctx context.Context, token string) error {
	return utils.ReleaseRunLock(ctx, l.rdb, runLockKey, token)
}
