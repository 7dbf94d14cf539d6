package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-grading-service/internal/services"
	"github.com/SAP-F-2025/exam-grading-service/internal/utils"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves staff-only grading operations
type AdminHandler struct {
	BaseHandler
	gradingService services.GradingService
	exportService  services.ExportService
	validator      *validator.Validator
}

func NewAdminHandler(
	gradingService services.GradingService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		exportService:  exportService,
		validator:      validator,
	}
}

// RegradeSession re-runs grading against the current question definitions
// @Summary Regrade session
// @Tags admin
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResultResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/sessions/{id}/regrade [post]
func (h *AdminHandler) RegradeSession(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Regrading session", "session_id", sessionID, "user_id", user.ID)

	result, err := h.gradingService.RegradeSession(c.Request.Context(), sessionID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GradeAnswer records a manual score for an essay, writing or speaking answer
// @Summary Grade answer manually
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param questionId path uint true "Question ID"
// @Param grade body validator.ManualGradeRequest true "Points and feedback"
// @Success 200 {object} services.SessionResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/sessions/{id}/answers/{questionId}/grade [post]
func (h *AdminHandler) GradeAnswer(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "questionId")
	if questionID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Grading answer", "session_id", sessionID, "question_id", questionID)

	var req validator.ManualGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	result, err := h.gradingService.GradeManualAnswer(c.Request.Context(), sessionID, questionID, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportResults streams an xlsx workbook of every session of an exam
// @Summary Export exam results
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Exam ID"
// @Param status query string false "Session status filter"
// @Success 200 {file} file
// @Router /admin/exams/{id}/export [get]
func (h *AdminHandler) ExportResults(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var filters validator.ExportFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Exporting exam results", "exam_id", examID)

	data, err := h.exportService.ExportExamResults(c.Request.Context(), examID, filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_%d_results_%s.xlsx", examID, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetExamStatistics returns exam averages and per-question correct rates
// @Summary Get exam statistics
// @Tags admin
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} services.ExamStatisticsResponse
// @Router /admin/exams/{id}/statistics [get]
func (h *AdminHandler) GetExamStatistics(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	stats, err := h.exportService.GetExamStatistics(c.Request.Context(), examID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
