package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.getDB(tx).WithContext(ctx).Preload("Exam").First(&session, id).Error; err != nil {
		return nil, wrapNotFound(err, "session", id)
	}
	return &session, nil
}

// GetByIDForUpdate takes a row lock so two submits of the same session serialize
func (s *SessionPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, id).Error; err != nil {
		return nil, wrapNotFound(err, "session", id)
	}

	// Preload cannot be combined with FOR UPDATE on postgres
	var exam models.Exam
	if err := s.getDB(tx).WithContext(ctx).First(&exam, session.ExamID).Error; err != nil {
		return nil, wrapNotFound(err, "exam", session.ExamID)
	}
	session.Exam = exam

	return &session, nil
}

func (s *SessionPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	db := s.getDB(tx)
	var sessions []*models.ExamSession
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.ExamSession{}).Where("exam_id = ?", examID)
	query = applySessionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	// then apply pagination and sorting
	query = applyPagination(query.Order("id ASC"), filters.Limit, filters.Offset)

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, total, nil
}

// UpdateScore writes the status and every score column of the session
func (s *SessionPostgreSQL) UpdateScore(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := s.getDB(tx)
	err := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ?", session.ID).
		Select("status", "total_score", "max_score", "percentage_score",
			"listening_raw", "reading_raw", "listening_band", "reading_band", "writing_band",
			"pending_manual", "submitted_at", "graded_at", "updated_at").
		Updates(session).Error
	if err != nil {
		return fmt.Errorf("failed to update session score: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
