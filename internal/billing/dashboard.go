package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// Dashboard consolidates every home dashboard widget for one snapshot.
type Dashboard struct {
	Generation     int64           `json:"generation"`
	FetchedAt      time.Time       `json:"fetched_at"`
	TotalStudents  int             `json:"total_siswa"`
	TotalClasses   int             `json:"total_kelas"`
	TotalMajors    int             `json:"total_jurusan"`
	Bills          Counts          `json:"tagihan"`
	TotalArrears   decimal.Decimal `json:"total_tunggakan"`
	TopArrears     []ArrearsEntry  `json:"siswa_menunggak"`
	MonthlyTrend   []TrendBucket   `json:"tren_bulanan"`
	Distribution   []StatusSlice   `json:"distribusi_status"`
	MonthlyRevenue decimal.Decimal `json:"pendapatan_bulan_ini"`
	Kas            KasTotals       `json:"kas"`
}

// BuildDashboard derives the dashboard from a snapshot. now fixes the
// "current month" for revenue; topN caps the arrears list.
func BuildDashboard(s *model.Snapshot, now time.Time, topN int) Dashboard {
	return Dashboard{
		Generation:     s.Generation,
		FetchedAt:      s.FetchedAt,
		TotalStudents:  len(s.Students),
		TotalClasses:   len(s.Classes),
		TotalMajors:    len(s.Majors),
		Bills:          Summarize(s.Bills),
		TotalArrears:   TotalArrears(s.Bills),
		TopArrears:     TopArrears(s.Bills, topN),
		MonthlyTrend:   MonthlyTrend(s.Bills, now.Location()),
		Distribution:   StatusDistribution(s.Bills),
		MonthlyRevenue: MonthlyRevenue(s.Bills, s.Kas, now),
		Kas:            KasSummary(s.Kas),
	}
}
