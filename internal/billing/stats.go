package billing

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// TrendWindow is the number of most recent months kept in the trend.
const TrendWindow = 6

// Counts holds the stat-card totals. Unpaid is everything not exactly paid,
// partial and pending included.
type Counts struct {
	Total  int `json:"total"`
	Paid   int `json:"lunas"`
	Unpaid int `json:"belum_lunas"`
}

// Summarize counts bills by paid / not paid.
func Summarize(bills []model.Bill) Counts {
	c := Counts{Total: len(bills)}
	for _, b := range bills {
		if b.IsPaid() {
			c.Paid++
		}
	}
	c.Unpaid = c.Total - c.Paid
	return c
}

// TrendBucket counts bills created in one calendar month.
type TrendBucket struct {
	Year    int    `json:"tahun"`
	Month   int    `json:"bulan"`
	Label   string `json:"label"`
	Paid    int    `json:"lunas"`
	NotPaid int    `json:"belum_lunas"`
}

// MonthlyTrend buckets bills by the (year, month) of their creation date in
// loc, the same calendar MonthlyRevenue uses. Only populated months appear;
// buckets are ascending and only the last TrendWindow are kept. Bills without
// a creation date are skipped.
func MonthlyTrend(bills []model.Bill, loc *time.Location) []TrendBucket {
	if loc == nil {
		loc = time.UTC
	}
	type key struct{ year, month int }
	buckets := make(map[key]*TrendBucket)

	for _, b := range bills {
		if b.CreatedAt.IsZero() {
			continue
		}
		created := b.CreatedAt.In(loc)
		k := key{created.Year(), int(created.Month())}
		bucket, ok := buckets[k]
		if !ok {
			bucket = &TrendBucket{Year: k.year, Month: k.month, Label: MonthLabel(k.year, k.month)}
			buckets[k] = bucket
		}
		if b.IsPaid() {
			bucket.Paid++
		} else {
			bucket.NotPaid++
		}
	}

	out := make([]TrendBucket, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})

	if len(out) > TrendWindow {
		out = out[len(out)-TrendWindow:]
	}
	return out
}

// StatusSlice is one category of the status distribution chart.
type StatusSlice struct {
	Status  model.BillStatus `json:"status"`
	Label   string           `json:"label"`
	Color   string           `json:"color"`
	Count   int              `json:"count"`
	Percent float64          `json:"percent"`
}

var distributionOrder = []struct {
	status model.BillStatus
	label  string
	color  string
}{
	{model.BillStatusPaid, "Lunas", "#22c55e"},
	{model.BillStatusPartial, "Sebagian", "#f59e0b"},
	{model.BillStatusUnpaid, "Belum Lunas", "#ef4444"},
}

// StatusDistribution splits bills into Lunas, Sebagian and Belum Lunas.
// All three categories are always emitted, zero counts included; whether a
// zero slice shows its label is up to the presentation layer. Pending bills
// belong to none of the categories.
func StatusDistribution(bills []model.Bill) []StatusSlice {
	counts := make(map[model.BillStatus]int, len(distributionOrder))
	for _, b := range bills {
		counts[b.Status]++
	}

	total := 0
	for _, d := range distributionOrder {
		total += counts[d.status]
	}

	out := make([]StatusSlice, 0, len(distributionOrder))
	for _, d := range distributionOrder {
		s := StatusSlice{Status: d.status, Label: d.label, Color: d.color, Count: counts[d.status]}
		if total > 0 {
			s.Percent = math.Round(float64(s.Count)*1000/float64(total)) / 10
		}
		out = append(out, s)
	}
	return out
}

// MonthlyRevenue is this month's income from bills: paid bills created in
// now's calendar month count their paid amount, and partial bills count the
// kas "masuk" entries of this month whose description mentions the bill
// number.
//
// The partial-bill half links ledger entries to bills by substring match on
// free text. A description naming two bill numbers counts for both, and a
// renamed description drops out. Bills without a number never match.
func MonthlyRevenue(bills []model.Bill, kas []model.KasEntry, now time.Time) decimal.Decimal {
	total := decimal.Zero

	for _, b := range bills {
		switch b.Status {
		case model.BillStatusPaid:
			if sameMonth(b.CreatedAt, now) {
				total = total.Add(b.Paid)
			}
		case model.BillStatusPartial:
			if strings.TrimSpace(b.Number) == "" {
				continue
			}
			for _, k := range kas {
				if k.Type != model.KasMasuk || !sameMonth(k.CreatedAt, now) {
					continue
				}
				// TODO: match on a bill id once the kas API exposes one.
				if strings.Contains(k.Description, b.Number) {
					total = total.Add(k.Amount)
				}
			}
		}
	}
	return total
}

func sameMonth(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}
