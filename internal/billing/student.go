package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// LedgerPayment is a payment flattened out of its bill for history display.
type LedgerPayment struct {
	model.Payment
	BillID     string `json:"id_tagihan"`
	BillNumber string `json:"nomor_tagihan"`
}

// StudentLedger is everything a student sees about their own bills.
type StudentLedger struct {
	StudentID        string          `json:"id_siswa"`
	Bills            []model.Bill    `json:"tagihan"`
	Payments         []LedgerPayment `json:"riwayat_pembayaran"`
	TotalBilled      decimal.Decimal `json:"total_tagihan"`
	TotalPaid        decimal.Decimal `json:"total_dibayar"`
	TotalOutstanding decimal.Decimal `json:"total_tunggakan"`
	ActiveBills      int             `json:"tagihan_aktif"`
	NextDueDate      *time.Time      `json:"jatuh_tempo_terdekat"`
}

// StudentBills collects one student's bills, their payment history (newest
// first) and totals.
func StudentBills(bills []model.Bill, studentID string) StudentLedger {
	l := StudentLedger{
		StudentID:        studentID,
		Bills:            make([]model.Bill, 0),
		Payments:         make([]LedgerPayment, 0),
		TotalBilled:      decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	var nearest time.Time
	for _, b := range bills {
		if b.StudentID != studentID {
			continue
		}
		l.Bills = append(l.Bills, b)
		l.TotalBilled = l.TotalBilled.Add(b.Total)
		l.TotalPaid = l.TotalPaid.Add(b.Paid)
		if !b.IsPaid() {
			l.ActiveBills++
			l.TotalOutstanding = l.TotalOutstanding.Add(Outstanding(b))
			if due := NearestDueDate(b); !due.IsZero() && (nearest.IsZero() || due.Before(nearest)) {
				nearest = due
			}
		}
		for _, p := range b.Payments {
			l.Payments = append(l.Payments, LedgerPayment{Payment: p, BillID: b.ID, BillNumber: b.Number})
		}
	}

	sort.SliceStable(l.Payments, func(i, j int) bool {
		return l.Payments[i].CreatedAt.After(l.Payments[j].CreatedAt)
	})
	l.NextDueDate = optionalTime(nearest)
	return l
}
