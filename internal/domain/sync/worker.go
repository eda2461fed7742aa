package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// retryDelays is the backoff ladder between delivery attempts. Attempts past
// the end of the ladder reuse the last delay.
var retryDelays = []time.Duration{
	1 * time.Second,
	30 * time.Second,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
}

const claimBatchSize = 50

// Worker polls the outbox and drives the engine.
type Worker struct {
	outbox      Outbox
	engine      *Engine
	pollEvery   time.Duration
	maxAttempts int
	log         zerolog.Logger
}

func NewWorker(outbox Outbox, engine *Engine, pollEvery time.Duration, maxAttempts int, log zerolog.Logger) *Worker {
	return &Worker{
		outbox:      outbox,
		engine:      engine,
		pollEvery:   pollEvery,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Run blocks until ctx is cancelled, draining the outbox every poll
// interval.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().
		Dur("poll_every", w.pollEvery).
		Int("max_attempts", w.maxAttempts).
		Msg("sync worker started")

	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("sync worker stopped")
			return
		case <-ticker.C:
			w.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch claims due items and attempts delivery for each. Exported so
// tests and the serve loop can drain synchronously.
func (w *Worker) ProcessBatch(ctx context.Context) {
	items, err := w.outbox.ClaimDue(ctx, claimBatchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to claim sync items")
		return
	}

	for _, item := range items {
		if err := w.engine.SyncRecord(ctx, item.RecordID); err != nil {
			w.handleFailure(ctx, item, err)
			continue
		}
		if err := w.outbox.MarkDelivered(ctx, item.ID); err != nil {
			w.log.Error().Err(err).Int64("item_id", item.ID).Msg("failed to mark item delivered")
		}
	}
}

func (w *Worker) handleFailure(ctx context.Context, item *OutboxItem, cause error) {
	attempts := item.Attempts + 1
	exhausted := attempts >= w.maxAttempts

	next := time.Now().Add(backoff(attempts))
	if err := w.outbox.MarkFailed(ctx, item.ID, attempts, next, cause.Error(), exhausted); err != nil {
		w.log.Error().Err(err).Int64("item_id", item.ID).Msg("failed to record sync failure")
		return
	}

	evt := w.log.Warn()
	if exhausted {
		evt = w.log.Error()
	}
	evt.Err(cause).
		Str("record_id", item.RecordID.String()).
		Int("attempts", attempts).
		Bool("exhausted", exhausted).
		Msg("sync delivery failed")
}

func backoff(attempts int) time.Duration {
	idx := attempts - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(retryDelays) {
		idx = len(retryDelays) - 1
	}
	return retryDelays[idx]
}
