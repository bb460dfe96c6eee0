package service

import (
	"context"
	"strings"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

// StudentFilter narrows the student list. Empty fields match everything.
type StudentFilter struct {
	Nama    string `form:"nama"`
	Kelas   string `form:"kelas"`
	Jurusan string `form:"jurusan"`
}

func (f StudentFilter) match(s model.Student) bool {
	if nama := strings.TrimSpace(f.Nama); nama != "" &&
		!strings.Contains(strings.ToLower(s.Name), strings.ToLower(nama)) {
		return false
	}
	if f.Kelas != "" && s.ClassID != f.Kelas {
		return false
	}
	if f.Jurusan != "" && s.MajorID != f.Jurusan {
		return false
	}
	return true
}

// StudentService handles student views.
type StudentService struct {
	source   SnapshotSource
	pageSize int
}

// NewStudentService creates a new StudentService.
func NewStudentService(source SnapshotSource, pageSize int) *StudentService {
	return &StudentService{source: source, pageSize: pageSize}
}

// ListStudents retrieves students matching f with pagination.
func (s *StudentService) ListStudents(ctx context.Context, f StudentFilter, page, perPage int) ([]model.Student, *response.Pagination, int64, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, nil, 0, err
	}

	matched := make([]model.Student, 0, len(snap.Students))
	for _, st := range snap.Students {
		if f.match(st) {
			matched = append(matched, st)
		}
	}

	items, p := billing.Paginate(matched, page, clampPageSize(perPage, s.pageSize))
	return items, toPagination(p), snap.Generation, nil
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id string) (*model.Student, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, err
	}
	st, ok := snap.StudentByID(id)
	if !ok {
		return nil, ErrStudentNotFound
	}
	return &st, nil
}

// Ledger returns a student's own bills, payment history and totals. A student
// known only through their bills still gets a ledger.
func (s *StudentService) Ledger(ctx context.Context, id string) (*billing.StudentLedger, int64, error) {
	snap, err := s.source.Current(ctx)
	if err != nil {
		return nil, 0, err
	}

	ledger := billing.StudentBills(snap.Bills, id)
	if _, ok := snap.StudentByID(id); !ok && len(ledger.Bills) == 0 {
		return nil, snap.Generation, ErrStudentNotFound
	}
	return &ledger, snap.Generation, nil
}
