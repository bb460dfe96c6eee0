package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// ErrSnapshotNotFound is returned when no snapshot is cached.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// storeIfNewer writes the snapshot only when its generation is above the one
// already stored. Returns 1 when written, 0 when stale.
//
// KEYS[1] snapshot, KEYS[2] stored generation
// ARGV[1] generation, ARGV[2] payload, ARGV[3] ttl in ms (0 = no expiry)
var storeIfNewer = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
local gen = tonumber(ARGV[1])
if gen <= current then
  return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ttl)
else
  redis.call('SET', KEYS[1], ARGV[2])
end
redis.call('SET', KEYS[2], ARGV[1])
return 1
`)

// SnapshotRepository caches the normalized upstream snapshot in Redis.
type SnapshotRepository struct {
	rdb *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(rdb *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{rdb: rdb}
}

// NextGeneration reserves a generation number for a refresh that is about to
// start. Generations are strictly increasing across replicas.
func (r *SnapshotRepository) NextGeneration(ctx context.Context) (int64, error) {
	return r.rdb.Incr(ctx, config.CacheKey.GenerationCounter()).Result()
}

// Save stores snap unless a snapshot of the same or a newer generation is
// already stored. The boolean reports whether snap was written.
func (r *SnapshotRepository) Save(ctx context.Context, snap *model.Snapshot, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}

	stored, err := storeIfNewer.Run(ctx, r.rdb,
		[]string{config.CacheKey.Snapshot(), config.CacheKey.Generation()},
		snap.Generation, payload, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Load returns the cached snapshot.
func (r *SnapshotRepository) Load(ctx context.Context) (*model.Snapshot, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.Snapshot()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// CurrentGeneration returns the generation of the stored snapshot, 0 if none
// was ever stored.
func (r *SnapshotRepository) CurrentGeneration(ctx context.Context) (int64, error) {
	gen, err := r.rdb.Get(ctx, config.CacheKey.Generation()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// PublishRefreshed announces a stored snapshot on the refresh channel.
func (r *SnapshotRepository) PublishRefreshed(ctx context.Context, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode refresh event: %w", err)
	}
	return r.rdb.Publish(ctx, config.CacheKey.RefreshChannel(), payload).Err()
}
