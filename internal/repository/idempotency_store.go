package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"

	"gorm.io/gorm"
)

// IdempotencyStore is the key→record store behind the idempotency guard.
// Get returns (nil, nil) on a miss; an error from any method means the store
// is unavailable and the guarded operation must fail closed.
//
// Sweep removes expired records and returns how many were deleted. It is a
// reclamation concern driven by an external ticker (internal/worker), never
// required for the correctness of the guard itself.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*model.IdempotencyRecord, error)
	Put(ctx context.Context, rec *model.IdempotencyRecord) error
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// ─── Postgres-backed store ───────────────────────────────────────────────────

type gormIdempotencyStore struct{ db *gorm.DB }

// NewGormIdempotencyStore returns a durable store on the primary database.
// Expiry is enforced on read (Get skips expired rows) and space is reclaimed
// by Sweep.
func NewGormIdempotencyStore(db *gorm.DB) IdempotencyStore {
	return &gormIdempotencyStore{db: db}
}

func (s *gormIdempotencyStore) Get(ctx context.Context, key string) (*model.IdempotencyRecord, error) {
	var rec model.IdempotencyRecord
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, time.Now()).
		First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *gormIdempotencyStore) Put(ctx context.Context, rec *model.IdempotencyRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *gormIdempotencyStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.IdempotencyRecord{})
	return res.RowsAffected, res.Error
}

// ─── In-memory store ─────────────────────────────────────────────────────────

type memoryIdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]model.IdempotencyRecord
}

// NewMemoryIdempotencyStore returns a process-local store. Suitable for tests
// and single-instance deployments without Redis; records do not survive a
// restart.
func NewMemoryIdempotencyStore() IdempotencyStore {
	return &memoryIdempotencyStore{records: make(map[string]model.IdempotencyRecord)}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (*model.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok || rec.Expired(time.Now()) {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *memoryIdempotencyStore) Put(_ context.Context, rec *model.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = *rec
	return nil
}

func (s *memoryIdempotencyStore) Sweep(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}
