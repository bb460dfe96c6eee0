package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
)

type MajorHandler struct {
	majorService *service.MajorService
}

func NewMajorHandler(majorService *service.MajorService) *MajorHandler {
	return &MajorHandler{majorService: majorService}
}

// ListMajors godoc
// GET /api/v1/jurusan
func (h *MajorHandler) ListMajors(c *gin.Context) {
	majors, err := h.majorService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"jurusan": majors})
}
