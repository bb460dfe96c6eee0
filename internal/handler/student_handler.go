package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/tagihan-dashboard/internal/response"
	"github.com/stemsi/tagihan-dashboard/internal/service"
	"github.com/stemsi/tagihan-dashboard/internal/validator"
)

// StudentHandler handles the student list and the per-student bill view.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// ListStudents godoc
// GET /api/v1/siswa
// Lists students with resolved class and major names, optionally filtered by
// nama, kelas and jurusan.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var f service.StudentFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	page, perPage := pageParams(c)

	students, pagination, gen, err := h.studentService.ListStudents(c.Request.Context(), f, page, perPage)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, gen)
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"siswa": students}, pagination)
}

// GetStudentBills godoc
// GET /api/v1/siswa/:id/tagihan
// Returns a student's own bills, payment history (newest first) and totals.
func (h *StudentHandler) GetStudentBills(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	ledger, gen, err := h.studentService.Ledger(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SetGeneration(c, gen)
	response.Success(c, http.StatusOK, ledger)
}
