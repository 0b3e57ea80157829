package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fingerprintPayload struct {
	SaleID string `json:"sale_id"`
	Amount string `json:"amount"`
}

func TestFingerprintDeterministic(t *testing.T) {
	p := fingerprintPayload{SaleID: "abc", Amount: "10.00"}

	a, err := Fingerprint("RegisterSale", "actor-1", p)
	require.NoError(t, err)
	b, err := Fingerprint("RegisterSale", "actor-1", p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha-256
}

func TestFingerprintSeparatesOperations(t *testing.T) {
	p := fingerprintPayload{SaleID: "abc", Amount: "10.00"}

	base, err := Fingerprint("RegisterSale", "actor-1", p)
	require.NoError(t, err)

	otherOp, err := Fingerprint("RecordWithdrawal", "actor-1", p)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherOp)

	otherActor, err := Fingerprint("RegisterSale", "actor-2", p)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherActor)

	otherPayload, err := Fingerprint("RegisterSale", "actor-1", fingerprintPayload{SaleID: "abc", Amount: "11.00"})
	require.NoError(t, err)
	assert.NotEqual(t, base, otherPayload)
}

func TestExecuteReplaysStoredResult(t *testing.T) {
	guard := NewGuard(repository.NewMemoryIdempotencyStore(), time.Hour)
	ctx := context.Background()
	calls := 0

	fn := func() (any, error) {
		calls++
		return map[string]string{"status": "posted"}, nil
	}

	first, err := guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s1"}, fn)
	require.NoError(t, err)

	second, err := guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s1"}, fn)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	// Distinct payload executes again.
	_, err = guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s2"}, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestExecuteFailureRecordsNothing(t *testing.T) {
	guard := NewGuard(repository.NewMemoryIdempotencyStore(), time.Hour)
	ctx := context.Background()
	calls := 0
	boom := errors.New("insufficient funds")

	_, err := guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s1"}, func() (any, error) {
		calls++
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// The failed attempt left no record, so the retry executes for real.
	out, err := guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s1"}, func() (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.JSONEq(t, `"ok"`, string(out))
}

func TestExecuteExpiredRecordRunsAgain(t *testing.T) {
	// A non-positive TTL writes records that are already expired, so every
	// call lands on a miss — the same retry after the real 24h window.
	guard := NewGuard(repository.NewMemoryIdempotencyStore(), -time.Minute)
	ctx := context.Background()
	calls := 0

	fn := func() (any, error) {
		calls++
		return "ok", nil
	}

	_, err := guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s1"}, fn)
	require.NoError(t, err)
	_, err = guard.Execute(ctx, "op", "actor", fingerprintPayload{SaleID: "s1"}, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

// downStore fails every read; Put/Sweep are never reached.
type downStore struct{}

func (downStore) Get(context.Context, string) (*model.IdempotencyRecord, error) {
	return nil, errors.New("connection refused")
}
func (downStore) Put(context.Context, *model.IdempotencyRecord) error {
	return errors.New("connection refused")
}
func (downStore) Sweep(context.Context, time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestExecuteFailsClosedWhenStoreDown(t *testing.T) {
	guard := NewGuard(downStore{}, time.Hour)
	invoked := false

	_, err := guard.Execute(context.Background(), "op", "actor", fingerprintPayload{SaleID: "s1"}, func() (any, error) {
		invoked = true
		return "ok", nil
	})
	assert.ErrorIs(t, err, cashdesk.ErrStoreUnavailable)
	assert.False(t, invoked, "the operation must not run when dedup state is unknown")
}

// putFailStore reads fine but cannot persist the write-back.
type putFailStore struct{ repository.IdempotencyStore }

func (s putFailStore) Put(context.Context, *model.IdempotencyRecord) error {
	return errors.New("disk full")
}

func TestExecutePutFailureStillReturnsResult(t *testing.T) {
	guard := NewGuard(putFailStore{repository.NewMemoryIdempotencyStore()}, time.Hour)

	// The side effect committed; a write-back failure must not surface as an
	// operation failure or the caller would retry and double-post.
	out, err := guard.Execute(context.Background(), "op", "actor", fingerprintPayload{SaleID: "s1"}, func() (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `"ok"`, string(out))
}
