package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
	"github.com/stemsi/tagihan-dashboard/internal/upstream"
)

// failFromError maps a service error onto the response envelope.
func failFromError(c *gin.Context, err error) {
	var apiErr *upstream.APIError

	switch {
	case errors.Is(err, billing.ErrNoCriteria):
		response.Fail(c, http.StatusBadRequest, response.ErrNoFilterCriteria)
	case errors.Is(err, service.ErrBillNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrBillNotFound)
	case errors.Is(err, service.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		// The upstream refused the request itself; pass its reason through.
		response.FailWithMessage(c, apiErr.StatusCode, response.ErrUpstreamRejected, apiErr.Message)
	case errors.Is(err, upstream.ErrUpstream):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
	case errors.Is(err, service.ErrSnapshotUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSnapshotUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		response.Fail(c, http.StatusGatewayTimeout, response.ErrUpstreamUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// acceptedPendingRefresh reports whether err is a write the upstream accepted
// whose follow-up refresh failed, and answers 202 if so.
func acceptedPendingRefresh(c *gin.Context, err error, message string) bool {
	if !errors.Is(err, service.ErrRefreshPending) {
		return false
	}
	response.Success(c, http.StatusAccepted, gin.H{"message": message, "refresh": "pending"})
	return true
}

// pageParams reads page and per_page. Invalid values fall back to defaults;
// the services clamp out-of-range ones.
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "0"))
	return page, perPage
}

// topParam reads the optional top=N override. Zero means "use the default".
func topParam(c *gin.Context) (int, bool) {
	raw := c.Query("top")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100 {
		return 0, false
	}
	return n, true
}
