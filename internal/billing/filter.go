package billing

import (
	"errors"
	"strings"

	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// Status filter values that are not bill statuses.
const (
	StatusAll        = "all"
	StatusBelumLunas = "belum_lunas"
)

// ErrNoCriteria is returned by Search when no filter field is set.
var ErrNoCriteria = errors.New("no filter criteria given")

// Filter is a conjunction of optional predicates over bills.
// Empty fields impose no constraint.
type Filter struct {
	Nama    string `form:"nama" json:"nama"`
	Kelas   string `form:"kelas" json:"kelas"`
	Jurusan string `form:"jurusan" json:"jurusan"`
	Status  string `form:"status" json:"status" binding:"omitempty,oneof=all belum_lunas unpaid partial paid pending"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Nama) == "" &&
		f.Kelas == "" &&
		f.Jurusan == "" &&
		(f.Status == "" || f.Status == StatusAll)
}

// Match reports whether bill satisfies every non-empty field of f.
func (f Filter) Match(b model.Bill) bool {
	if nama := strings.TrimSpace(f.Nama); nama != "" {
		if !strings.Contains(strings.ToLower(b.Student.Name), strings.ToLower(nama)) {
			return false
		}
	}
	if f.Kelas != "" && b.Student.ClassID != f.Kelas {
		return false
	}
	if f.Jurusan != "" && b.Student.MajorID != f.Jurusan {
		return false
	}
	return matchStatus(f.Status, b.Status)
}

// matchStatus applies the status predicate. belum_lunas means strictly
// unpaid or partial: pending is neither lunas nor belum_lunas and only shows
// up under its own value or "all".
func matchStatus(want string, got model.BillStatus) bool {
	switch want {
	case "", StatusAll:
		return true
	case StatusBelumLunas:
		return got != model.BillStatusPaid && got != model.BillStatusPending
	default:
		return string(got) == want
	}
}

// ApplyFilter returns the bills matching f, preserving input order.
func ApplyFilter(bills []model.Bill, f Filter) []model.Bill {
	out := make([]model.Bill, 0, len(bills))
	for _, b := range bills {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// Search is ApplyFilter for an explicit user search: it refuses to return the
// unfiltered list when nothing was selected.
func Search(bills []model.Bill, f Filter) ([]model.Bill, error) {
	if f.IsEmpty() {
		return nil, ErrNoCriteria
	}
	return ApplyFilter(bills, f), nil
}
