package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
)

const upsertBatchSize = 200

var sessionQuestionConflict = []clause.Column{{Name: "session_id"}, {Name: "question_id"}}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (ar *AnswerPostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	if err := ar.getDB(tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers by session: %w", err)
	}
	return answers, nil
}

func (ar *AnswerPostgreSQL) GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.StudentAnswer, error) {
	var answer models.StudentAnswer
	err := ar.getDB(tx).WithContext(ctx).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer for session %d question %d: %w", sessionID, questionID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	return &answer, nil
}

// UpsertBatch inserts or overwrites graded rows in one statement per batch
func (ar *AnswerPostgreSQL) UpsertBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	err := ar.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: sessionQuestionConflict,
			DoUpdates: clause.AssignmentColumns([]string{
				"answer", "is_correct", "points_earned", "max_points",
				"breakdown", "feedback", "graded_by", "graded_at", "updated_at",
			}),
		}).
		CreateInBatches(answers, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert answers: %w", err)
	}
	return nil
}

// SaveRaw upserts only the answer payload
func (ar *AnswerPostgreSQL) SaveRaw(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	err := ar.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   sessionQuestionConflict,
			DoUpdates: clause.AssignmentColumns([]string{"answer", "updated_at"}),
		}).
		CreateInBatches(answers, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to save answers: %w", err)
	}
	return nil
}

func (ar *AnswerPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.StudentAnswer, error) {
	var answers []models.StudentAnswer
	if err := ar.getDB(tx).WithContext(ctx).
		Joins("JOIN exam_sessions ON exam_sessions.id = student_answers.session_id").
		Where("exam_sessions.exam_id = ?", examID).
		Order("student_answers.session_id ASC, student_answers.question_id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers by exam: %w", err)
	}
	return answers, nil
}

func (ar *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}
