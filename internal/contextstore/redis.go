package contextstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps contexts in Redis with a native TTL. GETDEL makes
// TakeAndDelete atomic even across multiple agent processes, which the file
// backend cannot offer.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("contextstore: redis client is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Put(ctx context.Context, campaignID, phone string, cc CallContext) error {
	payload, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("contextstore: encode context: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(campaignID, phone), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("contextstore: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) TakeAndDelete(ctx context.Context, campaignID, phone string) (CallContext, bool, error) {
	payload, err := s.rdb.GetDel(ctx, redisKey(campaignID, phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return CallContext{}, false, nil
	}
	if err != nil {
		return CallContext{}, false, fmt.Errorf("contextstore: redis getdel: %w", err)
	}

	var cc CallContext
	if err := json.Unmarshal(payload, &cc); err != nil {
		// Already deleted by GETDEL; treat corrupt payloads as absent.
		return CallContext{}, false, nil
	}
	return cc, true, nil
}

// SweepExpired is a no-op: Redis expires entries itself.
func (s *RedisStore) SweepExpired(context.Context, time.Duration) (int, error) {
	return 0, nil
}

func redisKey(campaignID, phone string) string {
	return "didctx:" + campaignID + ":" + phone
}
