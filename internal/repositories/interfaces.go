package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// Every method takes an optional tx; nil runs against the base connection.

type ExamRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
}

type QuestionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)

	// GetByExam returns every question of the exam in display order, in one query (cached)
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Question, error)

	InvalidateExam(ctx context.Context, examID uint)
}

type SessionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error)

	// GetByIDForUpdate locks the session row for the rest of tx
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error)

	ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters SessionFilters) ([]*models.ExamSession, int64, error)
	UpdateScore(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
}

type AnswerRepository interface {
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.StudentAnswer, error)
	GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.StudentAnswer, error)

	// UpsertBatch writes graded rows keyed by (session_id, question_id)
	UpsertBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error

	// SaveRaw stores ungraded answers; existing grading columns are left untouched
	SaveRaw(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error

	// GetByExam returns the answers of every session of an exam, ordered by session
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.StudentAnswer, error)
}

// StatisticsRepository computes exam-wide aggregates for admin reporting
type StatisticsRepository interface {
	GetExamStatistics(ctx context.Context, tx *gorm.DB, examID uint) (*ExamStatistics, error)
	GetQuestionStatistics(ctx context.Context, tx *gorm.DB, examID uint) ([]QuestionStatistics, error)
}

// SessionFilters narrows ListByExam
type SessionFilters struct {
	Status   *models.SessionStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type ExamStatistics struct {
	ExamID           uint     `json:"exam_id"`
	TotalSessions    int64    `json:"total_sessions"`
	GradedSessions   int64    `json:"graded_sessions"`
	PendingManual    int64    `json:"pending_manual"`
	AverageScore     float64  `json:"average_score"`
	AveragePercent   float64  `json:"average_percentage"`
	AverageListening *float64 `json:"average_listening_band"`
	AverageReading   *float64 `json:"average_reading_band"`
	AverageWriting   *float64 `json:"average_writing_band"`
}

type QuestionStatistics struct {
	QuestionID     uint    `json:"question_id"`
	QuestionNumber *int    `json:"question_number"`
	Type           string  `json:"type"`
	Attempts       int64   `json:"attempts"`
	Correct        int64   `json:"correct"`
	CorrectRate    float64 `json:"correct_rate"`
	AveragePoints  float64 `json:"average_points"`
}
