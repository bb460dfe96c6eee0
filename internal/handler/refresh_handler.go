package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
)

// SnapshotRefresher re-fetches the snapshot from the upstream API.
type SnapshotRefresher interface {
	Refresh(ctx context.Context, reason string) (*model.Snapshot, error)
}

// RefreshHandler handles the explicit refresh action.
type RefreshHandler struct {
	refresher SnapshotRefresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(refresher SnapshotRefresher) *RefreshHandler {
	return &RefreshHandler{refresher: refresher}
}

// Refresh godoc
// POST /api/v1/refresh
// Re-fetches every collection. Concurrent calls share one fetch; on failure
// the previous snapshot stays in place.
func (h *RefreshHandler) Refresh(c *gin.Context) {
	snap, err := h.refresher.Refresh(c.Request.Context(), model.RefreshReasonManual)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, snap.Generation)
	response.Success(c, http.StatusOK, gin.H{
		"generation": snap.Generation,
		"fetched_at": snap.FetchedAt,
	})
}
