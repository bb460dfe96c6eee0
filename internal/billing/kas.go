package billing

import (
	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

// KasTotals is the cash ledger summary: money in, money out and the balance.
type KasTotals struct {
	Masuk   decimal.Decimal `json:"total_masuk"`
	Keluar  decimal.Decimal `json:"total_keluar"`
	Balance decimal.Decimal `json:"saldo"`
}

// KasSummary adds up ledger entries by direction. Entries of unknown type are
// ignored.
func KasSummary(entries []model.KasEntry) KasTotals {
	t := KasTotals{Masuk: decimal.Zero, Keluar: decimal.Zero}
	for _, e := range entries {
		switch e.Type {
		case model.KasMasuk:
			t.Masuk = t.Masuk.Add(e.Amount)
		case model.KasKeluar:
			t.Keluar = t.Keluar.Add(e.Amount)
		}
	}
	t.Balance = t.Masuk.Sub(t.Keluar)
	return t
}
