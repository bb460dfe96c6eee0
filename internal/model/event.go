package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventSnapshotRefreshed is published whenever a newer snapshot is stored.
const EventSnapshotRefreshed = "snapshot.refreshed"

// Refresh reasons.
const (
	RefreshReasonColdStart = "cold_start"
	RefreshReasonManual    = "manual"
	RefreshReasonWorker    = "worker"
	RefreshReasonMutation  = "mutation"
	RefreshReasonCLI       = "cli"
)

// RefreshEvent tells dashboards that they should re-query.
type RefreshEvent struct {
	Event        string          `json:"event"`
	Generation   int64           `json:"generation"`
	Reason       string          `json:"reason"`
	FetchedAt    time.Time       `json:"fetched_at"`
	TotalBills   int             `json:"total_tagihan"`
	TotalArrears decimal.Decimal `json:"total_tunggakan"`
}
