package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/repository"
)

// ErrSnapshotUnavailable means no snapshot could be served: nothing is
// cached and fetching a fresh one failed.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// refreshTimeout bounds one upstream fetch. The fetch is shared by every
// caller collapsed onto it, so it does not follow any single caller's context.
const refreshTimeout = 60 * time.Second

// SnapshotFetcher produces a fresh, normalized snapshot.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// SnapshotStore persists snapshots and announces new ones.
type SnapshotStore interface {
	NextGeneration(ctx context.Context) (int64, error)
	Save(ctx context.Context, snap *model.Snapshot, ttl time.Duration) (bool, error)
	Load(ctx context.Context) (*model.Snapshot, error)
	PublishRefreshed(ctx context.Context, event any) error
}

// RekapEnqueuer queues refresh summaries for persistence.
type RekapEnqueuer interface {
	Enqueue(ctx context.Context, rekap model.Rekap) error
}

// SnapshotService owns the lifecycle of the cached upstream snapshot.
type SnapshotService struct {
	fetcher SnapshotFetcher
	store   SnapshotStore
	rekaps  RekapEnqueuer
	metrics *metrics.Metrics
	ttl     time.Duration
	loc     *time.Location
	now     func() time.Time
	log     zerolog.Logger

	group singleflight.Group
	// fetches counts fetches started by this process.
	fetches atomic.Int64

	mu     sync.RWMutex
	latest *model.Snapshot
}

// NewSnapshotService creates a new SnapshotService. rekaps and m may be nil.
func NewSnapshotService(
	fetcher SnapshotFetcher,
	store SnapshotStore,
	rekaps RekapEnqueuer,
	m *metrics.Metrics,
	ttl time.Duration,
	loc *time.Location,
	log zerolog.Logger,
) *SnapshotService {
	if loc == nil {
		loc = time.Local
	}
	return &SnapshotService{
		fetcher: fetcher,
		store:   store,
		rekaps:  rekaps,
		metrics: m,
		ttl:     ttl,
		loc:     loc,
		now:     time.Now,
		log:     log.With().Str("component", "snapshot_service").Logger(),
	}
}

// Now returns the current time in the configured school timezone.
func (s *SnapshotService) Now() time.Time {
	return s.now().In(s.loc)
}

// Current returns the cached snapshot, fetching one when the cache is empty.
// When Redis is unreachable, or the cache expired and the fetch fails, the
// last snapshot seen by this process is served.
func (s *SnapshotService) Current(ctx context.Context) (*model.Snapshot, error) {
	snap, err := s.store.Load(ctx)
	switch {
	case err == nil:
		s.remember(snap)
		return snap, nil
	case errors.Is(err, repository.ErrSnapshotNotFound):
		fresh, err := s.Refresh(ctx, model.RefreshReasonColdStart)
		if err == nil {
			return fresh, nil
		}
		if last := s.Latest(); last != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Int64("generation", last.Generation).Msg("Snapshot fetch failed, serving in-process copy")
			return last, nil
		}
		return nil, err
	default:
		if last := s.Latest(); last != nil {
			s.log.Warn().Err(err).Int64("generation", last.Generation).Msg("Snapshot cache unreachable, serving in-process copy")
			return last, nil
		}
		return nil, fmt.Errorf("%w: load cache: %w", ErrSnapshotUnavailable, err)
	}
}

// Latest returns the newest snapshot this process has seen, or nil.
func (s *SnapshotService) Latest() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// CurrentGeneration returns the generation of Latest, or 0.
func (s *SnapshotService) CurrentGeneration() int64 {
	if snap := s.Latest(); snap != nil {
		return snap.Generation
	}
	return 0
}

// Refresh fetches a full snapshot from the upstream and stores it. Concurrent
// calls share a single fetch. A failed fetch leaves the stored snapshot as it
// was. When a newer snapshot got stored while this one was in flight, the
// newer one is returned instead.
func (s *SnapshotService) Refresh(ctx context.Context, reason string) (*model.Snapshot, error) {
	res, err := s.sharedRefresh(ctx, reason)
	if err != nil {
		return nil, err
	}
	return res.snap, nil
}

// refreshResult is a refreshed snapshot and the sequence number of the fetch
// that produced it.
type refreshResult struct {
	snap *model.Snapshot
	seq  int64
}

func (s *SnapshotService) sharedRefresh(ctx context.Context, reason string) (refreshResult, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refresh(fetchCtx, reason)
	})

	select {
	case <-ctx.Done():
		return refreshResult{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.metrics.RecordRefresh(reason, metrics.RefreshResultCollapsed)
		}
		if res.Err != nil {
			return refreshResult{}, res.Err
		}
		return res.Val.(refreshResult), nil
	}
}

func (s *SnapshotService) refresh(ctx context.Context, reason string) (refreshResult, error) {
	start := time.Now()
	seq := s.fetches.Add(1)

	gen, err := s.store.NextGeneration(ctx)
	if err != nil {
		s.metrics.RecordRefresh(reason, metrics.RefreshResultError)
		return refreshResult{}, fmt.Errorf("reserve generation: %w", err)
	}

	snap, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		s.metrics.RecordRefresh(reason, metrics.RefreshResultError)
		s.log.Error().Err(err).Str("reason", reason).Int64("generation", gen).Msg("Snapshot refresh failed, keeping previous snapshot")
		return refreshResult{}, err
	}
	snap.Generation = gen

	stored, err := s.store.Save(ctx, snap, s.ttl)
	if err != nil {
		s.metrics.RecordRefresh(reason, metrics.RefreshResultError)
		return refreshResult{}, fmt.Errorf("store snapshot: %w", err)
	}
	if !stored {
		s.metrics.RecordRefresh(reason, metrics.RefreshResultStale)
		s.log.Info().Int64("generation", gen).Msg("Discarding stale snapshot, a newer one is already stored")
		newer, err := s.store.Load(ctx)
		if err != nil {
			return refreshResult{}, fmt.Errorf("load newer snapshot: %w", err)
		}
		s.remember(newer)
		return refreshResult{snap: newer, seq: seq}, nil
	}

	s.remember(snap)
	s.announce(ctx, snap, reason)
	s.metrics.RecordRefresh(reason, metrics.RefreshResultSuccess)

	s.log.Info().
		Str("reason", reason).
		Int64("generation", gen).
		Int("bills", len(snap.Bills)).
		Int("students", len(snap.Students)).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot refreshed")

	return refreshResult{snap: snap, seq: seq}, nil
}

// Invalidate fetches a snapshot that reflects every upstream write made
// before the call. Used after a mutation was forwarded upstream. A fetch
// already in flight started before the write, so its result is not accepted
// and a second fetch runs. The cached snapshot stays in place until the new
// one is stored.
func (s *SnapshotService) Invalidate(ctx context.Context, reason string) (*model.Snapshot, error) {
	after := s.fetches.Load()
	for {
		res, err := s.sharedRefresh(ctx, reason)
		if err != nil {
			return nil, err
		}
		if res.seq > after {
			return res.snap, nil
		}
	}
}

// announce publishes the refresh event and queues the rekap row. Both are
// best effort; the snapshot is already stored.
func (s *SnapshotService) announce(ctx context.Context, snap *model.Snapshot, reason string) {
	counts := billing.Summarize(snap.Bills)
	arrears := billing.TotalArrears(snap.Bills)
	s.metrics.SetSnapshot(snap.Generation, arrears)

	event := model.RefreshEvent{
		Event:        model.EventSnapshotRefreshed,
		Generation:   snap.Generation,
		Reason:       reason,
		FetchedAt:    snap.FetchedAt,
		TotalBills:   counts.Total,
		TotalArrears: arrears,
	}
	if err := s.store.PublishRefreshed(ctx, event); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish refresh event")
	}

	if s.rekaps == nil {
		return
	}
	rekap := model.Rekap{
		Generation:     snap.Generation,
		Reason:         reason,
		FetchedAt:      snap.FetchedAt,
		TotalBills:     counts.Total,
		PaidBills:      counts.Paid,
		UnpaidBills:    counts.Unpaid,
		TotalArrears:   arrears,
		MonthlyRevenue: billing.MonthlyRevenue(snap.Bills, snap.Kas, s.Now()),
		KasBalance:     billing.KasSummary(snap.Kas).Balance,
	}
	if err := s.rekaps.Enqueue(ctx, rekap); err != nil {
		s.log.Warn().Err(err).Int64("generation", snap.Generation).Msg("Failed to queue rekap row")
	}
}

func (s *SnapshotService) remember(snap *model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil || snap.Generation >= s.latest.Generation {
		s.latest = snap
	}
}
