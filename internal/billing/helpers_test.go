package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

func rp(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

type billOpt func(*model.Bill)

func withStudent(id, name, classID, className string) billOpt {
	return func(b *model.Bill) {
		b.StudentID = id
		b.Student = model.StudentRef{ID: id, Name: name, ClassID: classID, ClassName: className}
	}
}

func withMajor(id, name string) billOpt {
	return func(b *model.Bill) {
		b.Student.MajorID = id
		b.Student.MajorName = name
	}
}

func createdAt(t time.Time) billOpt {
	return func(b *model.Bill) { b.CreatedAt = t }
}

func withItems(items ...model.BillItem) billOpt {
	return func(b *model.Bill) { b.Items = items }
}

func newBill(id string, status model.BillStatus, total, paid int64, opts ...billOpt) model.Bill {
	b := model.Bill{
		ID:        id,
		Number:    "TGH-" + id,
		StudentID: "s-" + id,
		Student:   model.StudentRef{ID: "s-" + id, Name: "Siswa " + id, ClassName: model.Placeholder},
		Status:    status,
		Total:     rp(total),
		Paid:      rp(paid),
		CreatedAt: day(2025, time.March, 1),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}
