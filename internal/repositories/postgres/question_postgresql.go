package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-grading-service/internal/cache"
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// GetByID retrieves a single question; not cached since preview and manual
// grading read it once
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.getDB(tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, wrapNotFound(err, "question", id)
	}
	return &question, nil
}

// GetByExam retrieves all questions of an exam with caching
func (q *QuestionPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Question, error) {
	db := q.getDB(tx)
	var questions []models.Question

	fetch := func() (interface{}, error) {
		var dbQuestions []models.Question
		if err := db.WithContext(ctx).
			Where("exam_id = ?", examID).
			Order(`"order" ASC`).
			Order("question_number ASC NULLS LAST").
			Order("id ASC").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to get questions by exam: %w", err)
		}
		return dbQuestions, nil
	}

	if q.cacheManager == nil {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.([]models.Question), nil
	}

	err := q.cacheManager.Exam.CacheOrExecute(ctx, cache.ExamQuestionsKey(examID), &questions, fetch)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// InvalidateExam drops the cached definitions after an authoring change
func (q *QuestionPostgreSQL) InvalidateExam(ctx context.Context, examID uint) {
	if q.cacheManager == nil {
		return
	}
	q.cacheManager.InvalidateExam(ctx, examID)
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
