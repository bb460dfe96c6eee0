package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

// KasService handles the cash ledger views.
type KasService struct {
	source   SnapshotSource
	upstream UpstreamWriter
	pageSize int
}

// NewKasService creates a new KasService.
func NewKasService(source SnapshotSource, upstream UpstreamWriter, pageSize int) *KasService {
	return &KasService{source: source, upstream: upstream, pageSize: pageSize}
}

// List returns ledger entries newest first, paginated.
func (s *KasService) List(ctx context.Context, page, perPage int) ([]model.KasEntry, *response.Pagination, int64, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, nil, 0, err
	}

	entries := make([]model.KasEntry, len(snap.Kas))
	copy(entries, snap.Kas)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	items, p := billing.Paginate(entries, page, clampPageSize(perPage, s.pageSize))
	return items, toPagination(p), snap.Generation, nil
}

// Summary returns total in, total out and the balance.
func (s *KasService) Summary(ctx context.Context) (billing.KasTotals, int64, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return billing.KasTotals{}, 0, err
	}
	return billing.KasSummary(snap.Kas), snap.Generation, nil
}

// Create forwards a new ledger entry upstream and re-fetches the snapshot.
func (s *KasService) Create(ctx context.Context, req model.CreateKasRequest) (*model.Snapshot, error) {
	if err := s.upstream.CreateKas(ctx, req); err != nil {
		return nil, fmt.Errorf("create kas entry: %w", err)
	}
	return refreshAfterWrite(ctx, s.source)
}
