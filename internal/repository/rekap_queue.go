package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// RekapQueue hands rekap rows to the persistence worker through a Redis list
// so a refresh never waits on PostgreSQL.
type RekapQueue struct {
	rdb *redis.Client
}

// NewRekapQueue creates a new RekapQueue.
func NewRekapQueue(rdb *redis.Client) *RekapQueue {
	return &RekapQueue{rdb: rdb}
}

// Enqueue pushes one row onto the persist queue.
func (q *RekapQueue) Enqueue(ctx context.Context, rekap model.Rekap) error {
	data, err := json.Marshal(rekap)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistRekapQueue, data).Err()
}
