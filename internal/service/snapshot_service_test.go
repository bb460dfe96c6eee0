package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	gate  chan struct{}
	build func(n int32) *model.Snapshot
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	n := f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.build != nil {
		return f.build(n), nil
	}
	return sampleSnapshot(), nil
}

type fakeQueue struct {
	mu   sync.Mutex
	rows []model.Rekap
}

func (q *fakeQueue) Enqueue(_ context.Context, r model.Rekap) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(q.rows, r)
	return nil
}

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		FetchedAt: time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC),
		Bills: []model.Bill{
			{ID: "1", Number: "TGH-1", StudentID: "s1", Status: model.BillStatusPaid,
				Total: decimal.NewFromInt(100000), Paid: decimal.NewFromInt(100000),
				CreatedAt: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
				Student:   model.StudentRef{ID: "s1", Name: "Budi Santoso", ClassID: "10A", ClassName: "X A"}},
			{ID: "2", Number: "TGH-2", StudentID: "s2", Status: model.BillStatusUnpaid,
				Total: decimal.NewFromInt(250000), Paid: decimal.Zero,
				CreatedAt: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
				Student:   model.StudentRef{ID: "s2", Name: "Siti Aminah", ClassID: "10A", ClassName: "X A"}},
			{ID: "3", Number: "TGH-3", StudentID: "s3", Status: model.BillStatusPartial,
				Total: decimal.NewFromInt(300000), Paid: decimal.NewFromInt(50000),
				CreatedAt: time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC),
				Student:   model.StudentRef{ID: "s3", Name: "Andi", ClassID: "11B", ClassName: "XI B", MajorID: "ipa", MajorName: "IPA"}},
		},
		Students: []model.Student{
			{ID: "s1", Name: "Budi Santoso", ClassID: "10A", ClassName: "X A"},
			{ID: "s2", Name: "Siti Aminah", ClassID: "10A", ClassName: "X A"},
			{ID: "s3", Name: "Andi", ClassID: "11B", ClassName: "XI B", MajorID: "ipa", MajorName: "IPA"},
		},
		Classes: []model.Class{{ID: "10A", Name: "X A"}, {ID: "11B", Name: "XI B"}},
		Majors:  []model.Major{{ID: "ipa", Name: "IPA"}},
		Kas: []model.KasEntry{
			{ID: "k1", Description: "Cicilan TGH-3", Amount: decimal.NewFromInt(50000), Type: model.KasMasuk,
				CreatedAt: time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)},
			{ID: "k2", Description: "ATK", Amount: decimal.NewFromInt(20000), Type: model.KasKeluar,
				CreatedAt: time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)},
		},
	}
}

type snapshotFixture struct {
	mr      *miniredis.Miniredis
	rdb     *redis.Client
	repo    *repository.SnapshotRepository
	fetcher *fakeFetcher
	queue   *fakeQueue
	svc     *SnapshotService
}

func newSnapshotFixture(t *testing.T, fetcher *fakeFetcher) *snapshotFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := repository.NewSnapshotRepository(rdb)
	queue := &fakeQueue{}
	svc := NewSnapshotService(fetcher, repo, queue, metrics.New(prometheus.NewRegistry()), time.Minute, time.UTC, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC) }

	return &snapshotFixture{mr: mr, rdb: rdb, repo: repo, fetcher: fetcher, queue: queue, svc: svc}
}

func TestSnapshotService_CurrentFetchesOnColdStartThenCaches(t *testing.T) {
	f := newSnapshotFixture(t, &fakeFetcher{})
	ctx := context.Background()

	first, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Generation)

	second, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Generation)
	assert.Equal(t, int32(1), f.fetcher.calls.Load())

	require.Len(t, f.queue.rows, 1)
	row := f.queue.rows[0]
	assert.Equal(t, model.RefreshReasonColdStart, row.Reason)
	assert.Equal(t, 3, row.TotalBills)
	assert.Equal(t, 1, row.PaidBills)
	assert.True(t, row.TotalArrears.Equal(decimal.NewFromInt(500000)))
	assert.True(t, row.MonthlyRevenue.Equal(decimal.NewFromInt(150000)))
	assert.True(t, row.KasBalance.Equal(decimal.NewFromInt(30000)))
}

func TestSnapshotService_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{}
	f := newSnapshotFixture(t, fetcher)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, model.RefreshReasonManual)
	require.NoError(t, err)

	fetcher.err = errors.New("upstream down")
	_, err = f.svc.Refresh(ctx, model.RefreshReasonManual)
	require.Error(t, err)

	snap, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Generation)
	assert.Len(t, snap.Bills, 3)
}

func TestSnapshotService_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	gate := make(chan struct{})
	f := newSnapshotFixture(t, &fakeFetcher{gate: gate})
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	gens := make([]int64, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := f.svc.Refresh(ctx, model.RefreshReasonManual)
			errs[i] = err
			if snap != nil {
				gens[i] = snap.Generation
			}
		}(i)
	}

	require.Eventually(t, func() bool { return f.fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.fetcher.calls.Load())
	for i := range gens {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(1), gens[i])
	}
}

func TestSnapshotService_StaleResultDoesNotOverwriteNewer(t *testing.T) {
	f := newSnapshotFixture(t, &fakeFetcher{})
	ctx := context.Background()

	newer := sampleSnapshot()
	newer.Generation = 50
	newer.Bills = newer.Bills[:1]
	stored, err := f.repo.Save(ctx, newer, 0)
	require.NoError(t, err)
	require.True(t, stored)

	got, err := f.svc.Refresh(ctx, model.RefreshReasonWorker)
	require.NoError(t, err)

	assert.Equal(t, int64(50), got.Generation)
	assert.Len(t, got.Bills, 1)
	assert.Empty(t, f.queue.rows)
}

func TestSnapshotService_RefreshPublishesEvent(t *testing.T) {
	f := newSnapshotFixture(t, &fakeFetcher{})
	ctx := context.Background()

	sub := f.rdb.Subscribe(ctx, "tagihan:snapshot:refreshed")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, model.RefreshReasonManual)
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"event":"snapshot.refreshed"`)
		assert.Contains(t, msg.Payload, `"reason":"manual"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh event")
	}
}

func TestSnapshotService_ServesInProcessCopyWhenRedisDown(t *testing.T) {
	f := newSnapshotFixture(t, &fakeFetcher{})
	ctx := context.Background()

	_, err := f.svc.Current(ctx)
	require.NoError(t, err)

	f.mr.Close()

	snap, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Generation)
}

func TestSnapshotService_CallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	gate := make(chan struct{})
	f := newSnapshotFixture(t, &fakeFetcher{gate: gate})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Refresh(ctx, model.RefreshReasonManual)
		done <- err
	}()
	require.Eventually(t, func() bool { return f.fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool {
		gen, err := f.repo.CurrentGeneration(context.Background())
		return err == nil && gen == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSnapshotService_FailedInvalidateKeepsCachedSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{}
	f := newSnapshotFixture(t, fetcher)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, model.RefreshReasonManual)
	require.NoError(t, err)

	fetcher.err = errors.New("upstream down")
	_, err = f.svc.Invalidate(ctx, model.RefreshReasonMutation)
	require.Error(t, err)

	snap, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Generation)
	assert.Len(t, snap.Bills, 3)
}

func TestSnapshotService_ExpiredCacheFallsBackToInProcessCopy(t *testing.T) {
	fetcher := &fakeFetcher{}
	f := newSnapshotFixture(t, fetcher)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, model.RefreshReasonManual)
	require.NoError(t, err)

	f.mr.FastForward(2 * time.Minute)
	fetcher.err = errors.New("upstream down")

	snap, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Generation)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestSnapshotService_InvalidateDoesNotReuseFetchStartedBefore(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &fakeFetcher{gate: gate}
	f := newSnapshotFixture(t, fetcher)
	ctx := context.Background()

	periodic := make(chan int64, 1)
	go func() {
		snap, err := f.svc.Refresh(ctx, model.RefreshReasonWorker)
		if err != nil {
			periodic <- -1
			return
		}
		periodic <- snap.Generation
	}()
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		snap *model.Snapshot
		err  error
	}
	invalidated := make(chan result, 1)
	go func() {
		snap, err := f.svc.Invalidate(ctx, model.RefreshReasonMutation)
		invalidated <- result{snap, err}
	}()
	time.Sleep(50 * time.Millisecond)
	close(gate)

	assert.Equal(t, int64(1), <-periodic)
	got := <-invalidated
	require.NoError(t, got.err)
	assert.Equal(t, int64(2), got.snap.Generation)
	assert.Equal(t, int32(2), fetcher.calls.Load())

	cached, err := f.repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.Generation)
}
