package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

var (
	ErrBillNotFound    = errors.New("bill not found")
	ErrStudentNotFound = errors.New("student not found")

	// ErrRefreshPending means the upstream accepted a write but the snapshot
	// could not be re-fetched afterwards. The write must not be retried.
	ErrRefreshPending = errors.New("write accepted, snapshot refresh pending")
)

// SnapshotSource serves the current snapshot and re-fetches it after writes.
// *SnapshotService is the production implementation.
type SnapshotSource interface {
	Current(ctx context.Context) (*model.Snapshot, error)
	Invalidate(ctx context.Context, reason string) (*model.Snapshot, error)
	Now() time.Time
}

// UpstreamWriter forwards mutations to the upstream API.
type UpstreamWriter interface {
	RecordPayment(ctx context.Context, billID string, req model.RecordPaymentRequest) error
	CreateKas(ctx context.Context, req model.CreateKasRequest) error
	DeleteBill(ctx context.Context, billID string) error
}

// refreshAfterWrite re-fetches the snapshot once an upstream write succeeded.
func refreshAfterWrite(ctx context.Context, source SnapshotSource) (*model.Snapshot, error) {
	snap, err := source.Invalidate(ctx, model.RefreshReasonMutation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshPending, err)
	}
	return snap, nil
}

func toPagination(p billing.Pagination) *response.Pagination {
	return &response.Pagination{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
	}
}

func clampPageSize(size, fallback int) int {
	if size < 1 {
		size = fallback
	}
	if size < 1 {
		size = billing.DefaultPageSize
	}
	if size > 100 {
		size = 100
	}
	return size
}
