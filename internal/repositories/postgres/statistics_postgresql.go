package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
)

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) repositories.StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *statisticsRepository) GetExamStatistics(ctx context.Context, tx *gorm.DB, examID uint) (*repositories.ExamStatistics, error) {
	db := r.getDB(tx)
	stats := &repositories.ExamStatistics{ExamID: examID}

	if err := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("exam_id = ?", examID).
		Count(&stats.TotalSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("exam_id = ? AND pending_manual = ?", examID, true).
		Count(&stats.PendingManual).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending sessions: %w", err)
	}

	var result struct {
		Graded       int64
		AvgScore     float64
		AvgPercent   float64
		AvgListening *float64
		AvgReading   *float64
		AvgWriting   *float64
	}

	// AVG ignores NULL bands, so skills an exam does not test stay nil
	if err := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("exam_id = ? AND status = ?", examID, models.SessionGraded).
		Select(`COUNT(*) AS graded,
			COALESCE(AVG(total_score), 0) AS avg_score,
			COALESCE(AVG(percentage_score), 0) AS avg_percent,
			AVG(listening_band) AS avg_listening,
			AVG(reading_band) AS avg_reading,
			AVG(writing_band) AS avg_writing`).
		Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to get exam averages: %w", err)
	}

	stats.GradedSessions = result.Graded
	stats.AverageScore = result.AvgScore
	stats.AveragePercent = result.AvgPercent
	stats.AverageListening = result.AvgListening
	stats.AverageReading = result.AvgReading
	stats.AverageWriting = result.AvgWriting

	return stats, nil
}

func (r *statisticsRepository) GetQuestionStatistics(ctx context.Context, tx *gorm.DB, examID uint) ([]repositories.QuestionStatistics, error) {
	db := r.getDB(tx)

	var rows []struct {
		QuestionID     uint
		QuestionNumber *int
		Type           string
		Attempts       int64
		Correct        int64
		AvgPoints      float64
	}

	if err := db.WithContext(ctx).
		Table("questions").
		Select(`questions.id AS question_id,
			questions.question_number,
			questions.type,
			COUNT(student_answers.id) AS attempts,
			COUNT(*) FILTER (WHERE student_answers.is_correct) AS correct,
			COALESCE(AVG(student_answers.points_earned), 0) AS avg_points`).
		Joins("LEFT JOIN student_answers ON student_answers.question_id = questions.id").
		Where("questions.exam_id = ?", examID).
		Group("questions.id, questions.question_number, questions.type").
		Order(`questions."order" ASC, questions.question_number ASC NULLS LAST, questions.id ASC`).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get question statistics: %w", err)
	}

	stats := make([]repositories.QuestionStatistics, 0, len(rows))
	for _, row := range rows {
		rate := float64(0)
		if row.Attempts > 0 {
			rate = float64(row.Correct) / float64(row.Attempts) * 100
		}
		stats = append(stats, repositories.QuestionStatistics{
			QuestionID:     row.QuestionID,
			QuestionNumber: row.QuestionNumber,
			Type:           row.Type,
			Attempts:       row.Attempts,
			Correct:        row.Correct,
			CorrectRate:    rate,
			AveragePoints:  row.AvgPoints,
		})
	}

	return stats, nil
}
