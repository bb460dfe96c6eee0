package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
)

// DashboardHandler handles the home dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/dashboard
// Returns stat cards, arrears total and top list, six-month trend, status
// distribution, this month's revenue and the kas balance.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	top, ok := topParam(c)
	if !ok {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"top": "top must be a number between 1 and 100"})
		return
	}

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), top)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, data.Generation)
	response.Success(c, http.StatusOK, data)
}

// GetHistory godoc
// GET /api/v1/dashboard/history
// Lists the most recent refresh summaries, newest first.
func (h *DashboardHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	rows, err := h.dashboardService.History(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rekap": rows})
}
