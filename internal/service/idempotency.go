package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"
)

// Guard deduplicates retried write operations by fingerprint. A payload must
// include every field that makes an operation unique, so two distinct
// legitimate operations never collide while identical retries always do.
type Guard struct {
	store repository.IdempotencyStore
	ttl   time.Duration
	now   func() time.Time
}

func NewGuard(store repository.IdempotencyStore, ttl time.Duration) *Guard {
	return &Guard{store: store, ttl: ttl, now: time.Now}
}

// Fingerprint computes the deterministic key for one guarded operation.
// Struct payloads marshal with fixed field order, so the hash is stable
// across retries of the same call.
func Fingerprint(operation, actorID string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint payload: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write([]byte(actorID))
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Execute runs fn at most once per fingerprint within the TTL window.
//
// A non-expired record short-circuits with the stored result — fn is not
// invoked and no side effect repeats. On success the serialized result is
// recorded; on failure nothing is recorded so the caller may retry. If the
// record store is unreachable the operation fails closed: a rejected retry
// is recoverable, a duplicate financial posting is not.
func (g *Guard) Execute(ctx context.Context, operation, actorID string, payload any, fn func() (any, error)) ([]byte, error) {
	key, err := Fingerprint(operation, actorID, payload)
	if err != nil {
		return nil, err
	}

	rec, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cashdesk.ErrStoreUnavailable, err)
	}
	if rec != nil {
		return rec.Result, nil
	}

	out, err := fn()
	if err != nil {
		return nil, err
	}

	result, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("serialize guarded result: %w", err)
	}

	now := g.now()
	put := &model.IdempotencyRecord{
		Key:        key,
		Result:     result,
		RecordedAt: now,
		ExpiresAt:  now.Add(g.ttl),
	}
	if err := g.store.Put(ctx, put); err != nil {
		// The side effect already committed. Surfacing a store failure here
		// would make the caller retry and double-post, so the write-back is
		// the one store error that cannot fail the operation.
		return result, nil
	}
	return result, nil
}
