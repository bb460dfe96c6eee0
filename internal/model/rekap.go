package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rekap is a persisted summary of one successful snapshot refresh.
type Rekap struct {
	ID             int64           `json:"id"`
	Generation     int64           `json:"generation"`
	Reason         string          `json:"reason"`
	FetchedAt      time.Time       `json:"fetched_at"`
	TotalBills     int             `json:"total_tagihan"`
	PaidBills      int             `json:"tagihan_lunas"`
	UnpaidBills    int             `json:"tagihan_belum_lunas"`
	TotalArrears   decimal.Decimal `json:"total_tunggakan"`
	MonthlyRevenue decimal.Decimal `json:"pendapatan_bulan_ini"`
	KasBalance     decimal.Decimal `json:"saldo_kas"`
	CreatedAt      time.Time       `json:"created_at"`
}
