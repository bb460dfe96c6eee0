package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

const (
	RekapBatchSize    = 20
	RekapBatchTimeout = 2 * time.Second
	RekapPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// RekapStore persists rekap rows.
type RekapStore interface {
	InsertBatch(ctx context.Context, rows []model.Rekap) error
	Insert(ctx context.Context, row model.Rekap) error
}

// RekapWorker drains the rekap queue into PostgreSQL in batches.
type RekapWorker struct {
	store RekapStore
	rdb   *redis.Client
	log   zerolog.Logger

	pollTimeout  time.Duration
	batchTimeout time.Duration
	retryBackoff time.Duration
}

func NewRekapWorker(store RekapStore, rdb *redis.Client, log zerolog.Logger) *RekapWorker {
	return &RekapWorker{
		store:        store,
		rdb:          rdb,
		log:          log.With().Str("component", "rekap_worker").Logger(),
		pollTimeout:  RekapPollTimeout,
		batchTimeout: RekapBatchTimeout,
		retryBackoff: 2 * time.Second,
	}
}

func (w *RekapWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RekapWorker started")

	buffer := make([]model.Rekap, 0, RekapBatchSize)
	lastFlush := time.Now()

	for {
		// 1. Flush on size or age
		if len(buffer) > 0 &&
			(len(buffer) >= RekapBatchSize || time.Since(lastFlush) >= w.batchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		// 2. Graceful shutdown
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. Block on the queue
		result, err := w.rdb.BLPop(ctx, w.pollTimeout, config.WorkerKey.PersistRekapQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue // handled by the shutdown branch
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			sleepCtx(ctx, 3*time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var row model.Rekap
		if err := json.Unmarshal([]byte(result[1]), &row); err != nil {
			// Malformed rows can never succeed.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed rekap row")
			continue
		}
		buffer = append(buffer, row)
	}
}

// flushSafe tries the batch insert, then row by row, then requeues.
func (w *RekapWorker) flushSafe(ctx context.Context, batch []model.Rekap) {
	err := w.store.InsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Rekap batch persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Batch insert failed, attempting row-by-row recovery")

	requeue := make([]model.Rekap, 0)
	for _, row := range batch {
		if err := w.store.Insert(ctx, row); err != nil {
			w.log.Error().Err(err).Int64("generation", row.Generation).Msg("Insert failed, requeueing")
			requeue = append(requeue, row)
		}
	}
	if len(requeue) > 0 {
		w.requeue(ctx, requeue)
	}
}

func (w *RekapWorker) requeue(ctx context.Context, rows []model.Rekap) {
	// The worker context may already be cancelled during shutdown.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	pipe := w.rdb.Pipeline()
	for _, row := range rows {
		data, _ := json.Marshal(row)
		pipe.RPush(pushCtx, config.WorkerKey.PersistRekapQueue, data)
	}
	if _, err := pipe.Exec(pushCtx); err != nil {
		w.log.Error().Err(err).Int("count", len(rows)).Msg("CRITICAL: Failed to requeue rekap rows. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(rows)).Msg("Requeued failed rekap rows")
	// Avoid thrashing while the database is down.
	sleepCtx(ctx, w.retryBackoff)
}

func (w *RekapWorker) shutdown(buffer []model.Rekap) {
	w.log.Info().Msg("RekapWorker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
