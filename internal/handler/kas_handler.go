package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
	"github.com/stemsi/tagihan-dashboard/internal/validator"
)

// KasHandler handles the cash ledger.
type KasHandler struct {
	kasService *service.KasService
}

// NewKasHandler creates a new KasHandler.
func NewKasHandler(kasService *service.KasService) *KasHandler {
	return &KasHandler{kasService: kasService}
}

// ListKas godoc
// GET /api/v1/kas
// Lists ledger entries newest first, paginated.
func (h *KasHandler) ListKas(c *gin.Context) {
	page, perPage := pageParams(c)

	entries, pagination, gen, err := h.kasService.List(c.Request.Context(), page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, gen)
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"kas": entries}, pagination)
}

// GetSummary godoc
// GET /api/v1/kas/summary
func (h *KasHandler) GetSummary(c *gin.Context) {
	totals, gen, err := h.kasService.Summary(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, gen)
	response.Success(c, http.StatusOK, totals)
}

// CreateKas godoc
// POST /api/v1/kas
// Forwards a new ledger entry to the upstream API, then refreshes the snapshot.
func (h *KasHandler) CreateKas(c *gin.Context) {
	var req model.CreateKasRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.kasService.Create(c.Request.Context(), req)
	if acceptedPendingRefresh(c, err, "kas berhasil dicatat, data sedang diperbarui") {
		return
	}
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, snap.Generation)
	response.Success(c, http.StatusCreated, gin.H{"message": "kas berhasil dicatat"})
}
