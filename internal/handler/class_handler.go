package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
)

// ClassHandler serves the class list for filter dropdowns.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ListClasses godoc
// GET /api/v1/kelas
// Lists all classes without pagination.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"kelas": classes})
}
