package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

// BillPage is one page of filtered bills. TotalArrears covers the whole
// filtered set, not only the page.
type BillPage struct {
	Bills        []model.Bill    `json:"tagihan"`
	TotalArrears decimal.Decimal `json:"total_tunggakan"`
	Generation   int64           `json:"-"`
}

// ArrearsReport is the arrears projection of the current snapshot.
type ArrearsReport struct {
	TotalArrears decimal.Decimal          `json:"total_tunggakan"`
	Top          []billing.ArrearsEntry   `json:"siswa_menunggak"`
	ByStudent    []billing.StudentArrears `json:"per_siswa"`
	Generation   int64                    `json:"-"`
}

// BillStats holds the statistics of an optionally filtered bill set.
type BillStats struct {
	Counts         billing.Counts        `json:"tagihan"`
	TotalArrears   decimal.Decimal       `json:"total_tunggakan"`
	MonthlyTrend   []billing.TrendBucket `json:"tren_bulanan"`
	Distribution   []billing.StatusSlice `json:"distribusi_status"`
	MonthlyRevenue decimal.Decimal       `json:"pendapatan_bulan_ini"`
	Generation     int64                 `json:"-"`
}

// TagihanService serves bill views derived from the snapshot and forwards
// bill mutations upstream.
type TagihanService struct {
	source   SnapshotSource
	upstream UpstreamWriter
	pageSize int
	topN     int
}

// NewTagihanService creates a new TagihanService.
func NewTagihanService(source SnapshotSource, upstream UpstreamWriter, pageSize, topN int) *TagihanService {
	return &TagihanService{source: source, upstream: upstream, pageSize: pageSize, topN: topN}
}

// List filters and paginates bills. An empty filter lists everything.
func (s *TagihanService) List(ctx context.Context, f billing.Filter, page, perPage int) (*BillPage, *response.Pagination, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.page(snap, billing.ApplyFilter(snap.Bills, f), page, perPage)
}

// Search is List for an explicit search action: it refuses an empty filter
// with billing.ErrNoCriteria.
func (s *TagihanService) Search(ctx context.Context, f billing.Filter, page, perPage int) (*BillPage, *response.Pagination, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	bills, err := billing.Search(snap.Bills, f)
	if err != nil {
		return nil, nil, err
	}
	return s.page(snap, bills, page, perPage)
}

func (s *TagihanService) page(snap *model.Snapshot, bills []model.Bill, page, perPage int) (*BillPage, *response.Pagination, error) {
	items, p := billing.Paginate(bills, page, clampPageSize(perPage, s.pageSize))
	return &BillPage{
		Bills:        items,
		TotalArrears: billing.TotalArrears(bills),
		Generation:   snap.Generation,
	}, toPagination(p), nil
}

// Get returns one bill.
func (s *TagihanService) Get(ctx context.Context, id string) (*model.Bill, int64, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, 0, err
	}
	bill, ok := snap.BillByID(id)
	if !ok {
		return nil, snap.Generation, ErrBillNotFound
	}
	return &bill, snap.Generation, nil
}

// Arrears returns the top n bills in arrears plus per-student totals. n <= 0
// uses the configured limit.
func (s *TagihanService) Arrears(ctx context.Context, n int) (*ArrearsReport, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.topN
	}
	return &ArrearsReport{
		TotalArrears: billing.TotalArrears(snap.Bills),
		Top:          billing.TopArrears(snap.Bills, n),
		ByStudent:    billing.ArrearsByStudent(snap.Bills),
		Generation:   snap.Generation,
	}, nil
}

// Stats computes statistics over the bills matching f.
func (s *TagihanService) Stats(ctx context.Context, f billing.Filter) (*BillStats, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	bills := billing.ApplyFilter(snap.Bills, f)
	return &BillStats{
		Counts:         billing.Summarize(bills),
		TotalArrears:   billing.TotalArrears(bills),
		MonthlyTrend:   billing.MonthlyTrend(bills, s.source.Now().Location()),
		Distribution:   billing.StatusDistribution(bills),
		MonthlyRevenue: billing.MonthlyRevenue(bills, snap.Kas, s.source.Now()),
		Generation:     snap.Generation,
	}, nil
}

// RecordPayment forwards an installment for a known bill and re-fetches the
// snapshot so every view reflects it.
func (s *TagihanService) RecordPayment(ctx context.Context, billID string, req model.RecordPaymentRequest) (*model.Snapshot, error) {
	if _, _, err := s.Get(ctx, billID); err != nil {
		return nil, err
	}
	if err := s.upstream.RecordPayment(ctx, billID, req); err != nil {
		return nil, fmt.Errorf("record payment for bill %s: %w", billID, err)
	}
	return refreshAfterWrite(ctx, s.source)
}

// Delete removes a bill upstream and re-fetches the snapshot.
func (s *TagihanService) Delete(ctx context.Context, billID string) (*model.Snapshot, error) {
	if _, _, err := s.Get(ctx, billID); err != nil {
		return nil, err
	}
	if err := s.upstream.DeleteBill(ctx, billID); err != nil {
		return nil, fmt.Errorf("delete bill %s: %w", billID, err)
	}
	return refreshAfterWrite(ctx, s.source)
}
