package worker

// sweeper.go
// Background goroutine that periodically removes expired idempotency records.
// The sweep is a storage reclamation concern only — the guard enforces expiry
// on read, so a missed or late tick never affects correctness.

import (
	"context"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/rs/zerolog/log"
)

// StartSweeper launches a goroutine that ticks at the given interval and
// sweeps the idempotency store. It respects the context for graceful
// shutdown; lifetime belongs to the host process, not to the store.
func StartSweeper(ctx context.Context, store repository.IdempotencyStore, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("idempotency sweeper: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("idempotency sweeper: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, store)
			}
		}
	}()
}

func sweep(ctx context.Context, store repository.IdempotencyStore) {
	removed, err := store.Sweep(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("idempotency sweeper: sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("idempotency sweeper: expired records purged")
	}
}
