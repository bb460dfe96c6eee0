package service

import (
	"context"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// RekapLister reads the persisted refresh history.
type RekapLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.Rekap, error)
}

// DashboardService handles the home dashboard.
type DashboardService struct {
	source SnapshotSource
	rekaps RekapLister
	topN   int
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(source SnapshotSource, rekaps RekapLister, topN int) *DashboardService {
	return &DashboardService{source: source, rekaps: rekaps, topN: topN}
}

// GetDashboardData derives every dashboard widget from one snapshot, so the
// widgets always agree with each other.
func (s *DashboardService) GetDashboardData(ctx context.Context, topN int) (*billing.Dashboard, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.topN
	}
	data := billing.BuildDashboard(snap, s.source.Now(), topN)
	return &data, nil
}

// History lists the most recent refresh summaries.
func (s *DashboardService) History(ctx context.Context, limit int) ([]model.Rekap, error) {
	if limit < 1 {
		limit = 30
	}
	if limit > 365 {
		limit = 365
	}
	return s.rekaps.ListRecent(ctx, limit)
}
