package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRekapStore struct {
	mu        sync.Mutex
	failBatch bool
	failGen   map[int64]bool
	rows      []model.Rekap
	attempts  map[int64]int
}

func (s *fakeRekapStore) InsertBatch(_ context.Context, rows []model.Rekap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBatch {
		return errors.New("batch failed")
	}
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *fakeRekapStore) Insert(_ context.Context, row model.Rekap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts == nil {
		s.attempts = make(map[int64]int)
	}
	s.attempts[row.Generation]++
	if s.failGen[row.Generation] {
		return errors.New("row failed")
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *fakeRekapStore) generations() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.Generation)
	}
	return out
}

func (s *fakeRekapStore) attemptsFor(gen int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[gen]
}

func newRekapFixture(t *testing.T, store *fakeRekapStore) (*RekapWorker, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	w := NewRekapWorker(store, rdb, zerolog.Nop())
	w.batchTimeout = 10 * time.Millisecond
	w.retryBackoff = 10 * time.Millisecond
	return w, rdb
}

func enqueue(t *testing.T, rdb *redis.Client, gens ...int64) {
	t.Helper()
	for _, g := range gens {
		data, err := json.Marshal(model.Rekap{
			Generation:   g,
			Reason:       model.RefreshReasonWorker,
			TotalArrears: decimal.NewFromInt(g * 1000),
		})
		require.NoError(t, err)
		require.NoError(t, rdb.RPush(context.Background(), config.WorkerKey.PersistRekapQueue, data).Err())
	}
}

func TestRekapWorker_PersistsBatch(t *testing.T) {
	store := &fakeRekapStore{}
	w, rdb := newRekapFixture(t, store)
	enqueue(t, rdb, 1, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return len(store.generations()) == 3 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []int64{1, 2, 3}, store.generations())
}

func TestRekapWorker_RowFallbackAndRequeue(t *testing.T) {
	store := &fakeRekapStore{failBatch: true, failGen: map[int64]bool{2: true}}
	w, rdb := newRekapFixture(t, store)
	enqueue(t, rdb, 1, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return store.attemptsFor(2) >= 2 }, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []int64{1, 3}, store.generations())
}

func TestRekapWorker_FlushesOnShutdown(t *testing.T) {
	store := &fakeRekapStore{}
	w, rdb := newRekapFixture(t, store)
	w.batchTimeout = time.Hour
	enqueue(t, rdb, 7)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		n, err := rdb.LLen(context.Background(), config.WorkerKey.PersistRekapQueue).Result()
		return err == nil && n == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, store.generations())

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, []int64{7}, store.generations())
}

type countingRefresher struct {
	calls  atomic.Int32
	reason atomic.Value
}

func (r *countingRefresher) Refresh(_ context.Context, reason string) (*model.Snapshot, error) {
	r.calls.Add(1)
	r.reason.Store(reason)
	return &model.Snapshot{}, nil
}

func TestRefreshWorker_Ticks(t *testing.T) {
	ref := &countingRefresher{}
	w := NewRefreshWorker(ref, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return ref.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, model.RefreshReasonWorker, ref.reason.Load())
}

func TestRefreshWorker_DisabledReturnsImmediately(t *testing.T) {
	ref := &countingRefresher{}
	w := NewRefreshWorker(ref, 0, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled worker kept running")
	}
	assert.Zero(t, ref.calls.Load())
}
