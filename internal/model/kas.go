package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// KasType is the direction of a cash ledger entry.
type KasType string

const (
	KasMasuk  KasType = "masuk"
	KasKeluar KasType = "keluar"
)

// KasEntry is a single cash ledger (kas) movement.
type KasEntry struct {
	ID          string          `json:"id"`
	Description string          `json:"deskripsi"`
	Amount      decimal.Decimal `json:"jumlah"`
	Type        KasType         `json:"tipe"`
	CreatedAt   time.Time       `json:"created_at"`
}
