package model

import "github.com/shopspring/decimal"

// RecordPaymentRequest is the payload for recording an installment against a
// bill. It is forwarded as-is to the upstream API.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"jumlah" binding:"required,gt=0"`
	Method string          `json:"metode_pembayaran" binding:"required,min=2,max=50"`
	Note   string          `json:"catatan,omitempty" binding:"omitempty,max=255"`
}

// CreateKasRequest is the payload for a new cash ledger entry.
type CreateKasRequest struct {
	Description string          `json:"deskripsi" binding:"required,min=3,max=255"`
	Amount      decimal.Decimal `json:"jumlah" binding:"required,gt=0"`
	Type        KasType         `json:"tipe" binding:"required,oneof=masuk keluar"`
}
