package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/billing"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
	"github.com/stemsi/tagihan-dashboard/internal/validator"
)

// TagihanHandler handles bill listing, search, arrears and statistics, plus
// the bill mutations proxied to the upstream API.
type TagihanHandler struct {
	tagihanService *service.TagihanService
}

// NewTagihanHandler creates a new TagihanHandler.
func NewTagihanHandler(tagihanService *service.TagihanService) *TagihanHandler {
	return &TagihanHandler{tagihanService: tagihanService}
}

// ListBills godoc
// GET /api/v1/tagihan
// Lists bills matching nama, kelas, jurusan and status, paginated. Without
// any filter every bill is listed.
func (h *TagihanHandler) ListBills(c *gin.Context) {
	var f billing.Filter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	page, perPage := pageParams(c)

	result, pagination, err := h.tagihanService.List(c.Request.Context(), f, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, result.Generation)
	response.SuccessWithPagination(c, http.StatusOK, result, pagination)
}

// SearchBills godoc
// GET /api/v1/tagihan/search
// Same as ListBills, but at least one filter is required.
func (h *TagihanHandler) SearchBills(c *gin.Context) {
	var f billing.Filter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	page, perPage := pageParams(c)

	result, pagination, err := h.tagihanService.Search(c.Request.Context(), f, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, result.Generation)
	response.SuccessWithPagination(c, http.StatusOK, result, pagination)
}

// GetBill godoc
// GET /api/v1/tagihan/:id
func (h *TagihanHandler) GetBill(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	bill, gen, err := h.tagihanService.Get(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, gen)
	response.Success(c, http.StatusOK, gin.H{"tagihan": bill})
}

// GetArrears godoc
// GET /api/v1/tagihan/tunggakan
// Returns the largest arrears (top=N, default from config) and the
// outstanding total per student.
func (h *TagihanHandler) GetArrears(c *gin.Context) {
	top, ok := topParam(c)
	if !ok {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"top": "top must be a number between 1 and 100"})
		return
	}

	report, err := h.tagihanService.Arrears(c.Request.Context(), top)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, report.Generation)
	response.Success(c, http.StatusOK, report)
}

// GetStats godoc
// GET /api/v1/tagihan/stats
// Stat cards, six-month trend, status distribution and this month's revenue
// over the optionally filtered bills.
func (h *TagihanHandler) GetStats(c *gin.Context) {
	var f billing.Filter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	stats, err := h.tagihanService.Stats(c.Request.Context(), f)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, stats.Generation)
	response.Success(c, http.StatusOK, stats)
}

// RecordPayment godoc
// POST /api/v1/tagihan/:id/bayar
// Forwards an installment to the upstream API, then refreshes the snapshot.
func (h *TagihanHandler) RecordPayment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordPaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.tagihanService.RecordPayment(c.Request.Context(), id, req)
	if acceptedPendingRefresh(c, err, "pembayaran tercatat, data sedang diperbarui") {
		return
	}
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, snap.Generation)
	bill, _ := snap.BillByID(id)
	response.Success(c, http.StatusOK, gin.H{"tagihan": bill})
}

// DeleteBill godoc
// DELETE /api/v1/tagihan/:id
func (h *TagihanHandler) DeleteBill(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snap, err := h.tagihanService.Delete(c.Request.Context(), id)
	if acceptedPendingRefresh(c, err, "tagihan berhasil dihapus, data sedang diperbarui") {
		return
	}
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, snap.Generation)
	response.Success(c, http.StatusOK, gin.H{"message": "tagihan berhasil dihapus"})
}
