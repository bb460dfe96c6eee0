package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus represents the payment state of a bill (tagihan).
type BillStatus string

const (
	BillStatusUnpaid  BillStatus = "unpaid"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
	BillStatusPending BillStatus = "pending"
)

// ItemStatus represents the payment state of a single bill item.
type ItemStatus string

const (
	ItemStatusUnpaid ItemStatus = "unpaid"
	ItemStatusPaid   ItemStatus = "paid"
)

// Bill is a student's bill with its items and recorded payments.
type Bill struct {
	ID        string          `json:"id"`
	Number    string          `json:"nomor_tagihan"`
	StudentID string          `json:"id_siswa"`
	Student   StudentRef      `json:"siswa"`
	Status    BillStatus      `json:"status"`
	Total     decimal.Decimal `json:"total_jumlah"`
	Paid      decimal.Decimal `json:"jumlah_bayar"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []BillItem      `json:"item_tagihan"`
	Payments  []Payment       `json:"pembayaran"`
}

// IsPaid reports whether the bill is fully settled.
func (b Bill) IsPaid() bool {
	return b.Status == BillStatusPaid
}

// BillItem is one line of a bill, optionally tied to a billing period.
type BillItem struct {
	ID          string          `json:"id"`
	Description string          `json:"deskripsi"`
	Amount      decimal.Decimal `json:"jumlah"`
	DueDate     time.Time       `json:"jatuh_tempo"`
	Status      ItemStatus      `json:"status"`
	Month       int             `json:"bulan,omitempty"`
	Year        int             `json:"tahun,omitempty"`
}

// Payment is an installment recorded against a bill.
type Payment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"jumlah"`
	Method    string          `json:"metode_pembayaran"`
	Verified  bool            `json:"sudah_verifikasi"`
	CreatedAt time.Time       `json:"created_at"`
	Note      string          `json:"catatan,omitempty"`
}
