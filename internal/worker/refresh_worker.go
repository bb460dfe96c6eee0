package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// Refresher re-fetches the upstream snapshot.
type Refresher interface {
	Refresh(ctx context.Context, reason string) (*model.Snapshot, error)
}

// RefreshWorker periodically re-fetches the snapshot so dashboards never see
// data older than the interval.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	log       zerolog.Logger
}

func NewRefreshWorker(refresher Refresher, interval time.Duration, log zerolog.Logger) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
		log:       log.With().Str("component", "refresh_worker").Logger(),
	}
}

// Start blocks until ctx is cancelled. A non-positive interval disables the
// worker.
func (w *RefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info().Msg("RefreshWorker disabled")
		return
	}
	w.log.Info().Dur("interval", w.interval).Msg("RefreshWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("RefreshWorker stopped")
			return
		case <-ticker.C:
			if _, err := w.refresher.Refresh(ctx, model.RefreshReasonWorker); err != nil && ctx.Err() == nil {
				w.log.Warn().Err(err).Msg("Periodic refresh failed")
			}
		}
	}
}
