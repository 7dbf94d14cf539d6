package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exam-grading-service/internal/services"
	"github.com/SAP-F-2025/exam-grading-service/internal/utils"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

// GradingHandler serves the student-facing session endpoints
type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	validator      *validator.Validator
}

func NewGradingHandler(
	gradingService services.GradingService,
	validator *validator.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		validator:      validator,
	}
}

// SaveAnswers autosaves answers for an in-progress session
// @Summary Autosave answers
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answers body validator.SaveAnswersRequest true "Answers"
// @Success 200 {object} services.SaveAnswersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [put]
func (h *GradingHandler) SaveAnswers(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Saving answers", "session_id", sessionID)

	var req validator.SaveAnswersRequest
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

	resp, err := h.gradingService.SaveAnswers(c.Request.Context(), sessionID, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitSession grades and closes a session
// @Summary Submit session
// @Description Grades every answer of the session. Submitting twice returns the stored result.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path uint true "Session ID"
// @Param answers body validator.SubmitSessionRequest false "Final answers"
// @Success 200 {object} services.SessionResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *GradingHandler) SubmitSession(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Submitting session", "session_id", sessionID)

	// an empty body submits whatever was autosaved
	var req validator.SubmitSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	result, err := h.gradingService.SubmitSession(c.Request.Context(), sessionID, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSessionResult returns graded answers and the session score
// @Summary Get session result
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResultResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/results [get]
func (h *GradingHandler) GetSessionResult(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	h.LogRequest(c, "Getting session result", "session_id", sessionID)

	result, err := h.gradingService.GetSessionResult(c.Request.Context(), sessionID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResultSummary returns the "x of y correct" view
// @Summary Get result summary
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.ResultSummaryResponse
// @Router /sessions/{id}/summary [get]
func (h *GradingHandler) GetResultSummary(c *gin.Context) {
	sessionID := h.parseIDParam(c, "id")
	if sessionID == 0 {
		return
	}
	user := h.currentUser(c)
	if user == nil {
		return
	}

	summary, err := h.gradingService.GetResultSummary(c.Request.Context(), sessionID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// PreviewGrade grades an unsaved question definition
// @Summary Preview grading
// @Description Lets authors check a correct-answer encoding against a sample answer
// @Tags grading
// @Accept json
// @Produce json
// @Param preview body validator.PreviewGradeRequest true "Question and answer"
// @Success 200 {object} grading.GradedAnswer
// @Failure 400 {object} ErrorResponse
// @Router /grading/preview [post]
func (h *GradingHandler) PreviewGrade(c *gin.Context) {
	h.LogRequest(c, "Previewing grade")

	var req validator.PreviewGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.gradingService.PreviewGrade(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
