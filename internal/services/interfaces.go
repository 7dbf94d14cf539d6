package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-grading-service/internal/grading"
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

// ===== GRADING SERVICE =====

type GradingService interface {
	// Student flow
	SaveAnswers(ctx context.Context, sessionID uint, req *validator.SaveAnswersRequest, actor *models.User) (*SaveAnswersResponse, error)
	SubmitSession(ctx context.Context, sessionID uint, req *validator.SubmitSessionRequest, actor *models.User) (*SessionResultResponse, error)
	GetSessionResult(ctx context.Context, sessionID uint, actor *models.User) (*SessionResultResponse, error)
	GetResultSummary(ctx context.Context, sessionID uint, actor *models.User) (*ResultSummaryResponse, error)

	// Admin flow
	RegradeSession(ctx context.Context, sessionID uint, actor *models.User) (*SessionResultResponse, error)
	GradeManualAnswer(ctx context.Context, sessionID, questionID uint, req *validator.ManualGradeRequest, actor *models.User) (*SessionResultResponse, error)

	// Authoring aid; nothing is persisted
	PreviewGrade(ctx context.Context, req *validator.PreviewGradeRequest) (*grading.GradedAnswer, error)
}

// ===== EXPORT SERVICE =====

type ExportService interface {
	ExportExamResults(ctx context.Context, examID uint, filters validator.ExportFilters, actor *models.User) ([]byte, error)
	GetExamStatistics(ctx context.Context, examID uint, actor *models.User) (*ExamStatisticsResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Grading() GradingService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ===== RESPONSES =====

type SaveAnswersResponse struct {
	SessionID uint      `json:"session_id"`
	Saved     int       `json:"saved"`
	Skipped   []uint    `json:"skipped,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// SessionResultResponse is the stored outcome of a session. Answers are
// redacted for students.
type SessionResultResponse struct {
	SessionID   uint                   `json:"session_id"`
	ExamID      uint                   `json:"exam_id"`
	StudentID   string                 `json:"student_id"`
	Status      models.SessionStatus   `json:"status"`
	Score       grading.SessionScore   `json:"score"`
	Answers     []models.StudentAnswer `json:"answers"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
	GradedAt    *time.Time             `json:"graded_at,omitempty"`
}

type ResultSummaryResponse struct {
	SessionID uint                   `json:"session_id"`
	Status    models.SessionStatus   `json:"status"`
	Summary   grading.DisplaySummary `json:"summary"`
	Score     grading.SessionScore   `json:"score"`
}

type ExamStatisticsResponse struct {
	Exam      *repositories.ExamStatistics      `json:"exam"`
	Questions []repositories.QuestionStatistics `json:"questions"`
}
