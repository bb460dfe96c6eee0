package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// DefaultTopN is the size of the "siswa menunggak" list on the dashboard.
const DefaultTopN = 5

// Outstanding returns what is still owed on a bill. It is never negative and
// is always zero for a paid bill, whatever its amounts say.
func Outstanding(b model.Bill) decimal.Decimal {
	if b.IsPaid() {
		return decimal.Zero
	}
	owed := b.Total.Sub(b.Paid)
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}

// TotalArrears sums the outstanding amount of every bill that is not paid.
func TotalArrears(bills []model.Bill) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if b.IsPaid() {
			continue
		}
		total = total.Add(Outstanding(b))
	}
	return total
}

// NearestDueDate returns the due date of the first unpaid item, falling back
// to the first item. The zero time means the bill has no items.
func NearestDueDate(b model.Bill) time.Time {
	for _, it := range b.Items {
		if it.Status != model.ItemStatusPaid {
			return it.DueDate
		}
	}
	if len(b.Items) > 0 {
		return b.Items[0].DueDate
	}
	return time.Time{}
}

// ArrearsEntry is one row of the students-in-arrears projection.
type ArrearsEntry struct {
	BillID      string          `json:"id_tagihan"`
	BillNumber  string          `json:"nomor_tagihan"`
	StudentID   string          `json:"id_siswa"`
	StudentName string          `json:"nama_siswa"`
	ClassLabel  string          `json:"kelas"`
	Outstanding decimal.Decimal `json:"tunggakan"`
	DueDate     *time.Time      `json:"jatuh_tempo"`
}

// InArrears reports whether a bill belongs in the arrears projection. Both the
// status and the arithmetic are checked.
func InArrears(b model.Bill) bool {
	return !b.IsPaid() && Outstanding(b).IsPositive()
}

// TopArrears lists bills in arrears by outstanding amount, largest first,
// capped to n entries. n <= 0 selects DefaultTopN.
func TopArrears(bills []model.Bill, n int) []ArrearsEntry {
	if n <= 0 {
		n = DefaultTopN
	}

	entries := make([]ArrearsEntry, 0)
	for _, b := range bills {
		if !InArrears(b) {
			continue
		}
		entries = append(entries, ArrearsEntry{
			BillID:      b.ID,
			BillNumber:  b.Number,
			StudentID:   b.StudentID,
			StudentName: b.Student.Name,
			ClassLabel:  b.Student.ClassLabel(),
			Outstanding: Outstanding(b),
			DueDate:     optionalTime(NearestDueDate(b)),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Outstanding.GreaterThan(entries[j].Outstanding)
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// ActiveBillCount counts a student's bills that are not paid. Unpaid, partial
// and pending bills are all open obligations.
func ActiveBillCount(bills []model.Bill, studentID string) int {
	count := 0
	for _, b := range bills {
		if b.StudentID == studentID && !b.IsPaid() {
			count++
		}
	}
	return count
}

// StudentArrears is the arrears total of one student across all their bills.
type StudentArrears struct {
	StudentID   string          `json:"id_siswa"`
	StudentName string          `json:"nama_siswa"`
	ClassLabel  string          `json:"kelas"`
	Outstanding decimal.Decimal `json:"tunggakan"`
	ActiveBills int             `json:"tagihan_aktif"`
}

// ArrearsByStudent sums outstanding amounts per student, largest first.
// Students who owe nothing are left out.
func ArrearsByStudent(bills []model.Bill) []StudentArrears {
	index := make(map[string]int)
	out := make([]StudentArrears, 0)

	for _, b := range bills {
		if b.IsPaid() {
			continue
		}
		i, ok := index[b.StudentID]
		if !ok {
			i = len(out)
			index[b.StudentID] = i
			out = append(out, StudentArrears{
				StudentID:   b.StudentID,
				StudentName: b.Student.Name,
				ClassLabel:  b.Student.ClassLabel(),
				Outstanding: decimal.Zero,
			})
		}
		out[i].Outstanding = out[i].Outstanding.Add(Outstanding(b))
		out[i].ActiveBills++
	}

	filtered := out[:0]
	for _, s := range out {
		if s.Outstanding.IsPositive() {
			filtered = append(filtered, s)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Outstanding.GreaterThan(filtered[j].Outstanding)
	})
	return filtered
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
