package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"

	"github.com/redis/go-redis/v9"
)

const idemKeyPrefix = "idem:"

type redisIdempotencyStore struct{ rdb *redis.Client }

// NewRedisIdempotencyStore returns a Redis-backed store. Records are written
// with a native TTL, so Redis reclaims them on its own; Sweep only scans for
// stragglers that lost their expiry (e.g. after a dump restore) and deletes
// them.
func NewRedisIdempotencyStore(rdb *redis.Client) IdempotencyStore {
	return &redisIdempotencyStore{rdb: rdb}
}

func (s *redisIdempotencyStore) Get(ctx context.Context, key string) (*model.IdempotencyRecord, error) {
	raw, err := s.rdb.Get(ctx, idemKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.IdempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Expired(time.Now()) {
		return nil, nil
	}
	return &rec, nil
}

func (s *redisIdempotencyStore) Put(ctx context.Context, rec *model.IdempotencyRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to store
	}
	return s.rdb.Set(ctx, idemKeyPrefix+rec.Key, raw, ttl).Err()
}

func (s *redisIdempotencyStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	iter := s.rdb.Scan(ctx, 0, idemKeyPrefix+"*", 256).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := s.rdb.TTL(ctx, key).Result()
		if err != nil {
			return removed, err
		}
		// -1 means the key exists without an expiry; delete rather than
		// guess a new deadline — the embedded ExpiresAt already passed or
		// the record is unreadable.
		if ttl == -1 {
			if err := s.rdb.Del(ctx, key).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, iter.Err()
}
