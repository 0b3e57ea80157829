package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSkipsExpired(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, &model.IdempotencyRecord{
		Key:        "live",
		Result:     []byte(`"ok"`),
		RecordedAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}))
	require.NoError(t, store.Put(ctx, &model.IdempotencyRecord{
		Key:        "stale",
		Result:     []byte(`"ok"`),
		RecordedAt: now.Add(-25 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}))

	rec, err := store.Get(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []byte(`"ok"`), rec.Result)

	// Expired record reads as a miss even before the sweeper reclaims it.
	rec, err = store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = store.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStoreSweepRemovesOnlyExpired(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()
	now := time.Now()

	for _, rec := range []model.IdempotencyRecord{
		{Key: "a", Result: []byte("{}"), ExpiresAt: now.Add(-2 * time.Hour)},
		{Key: "b", Result: []byte("{}"), ExpiresAt: now.Add(-time.Minute)},
		{Key: "c", Result: []byte("{}"), ExpiresAt: now.Add(time.Hour)},
	} {
		r := rec
		require.NoError(t, store.Put(ctx, &r))
	}

	removed, err := store.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	rec, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.NotNil(t, rec)

	// Idempotent: nothing left to reclaim.
	removed, err = store.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}
