package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

const (
	sessionsSheet   = "Sessions"
	answersSheet    = "Answers"
	statisticsSheet = "Statistics"

	exportPageSize = 500
	timeLayout     = "2006-01-02 15:04:05"
)

type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ExportExamResults writes one row per session, one row per graded answer and
// the per-question statistics into an xlsx workbook
func (s *exportService) ExportExamResults(ctx context.Context, examID uint, filters validator.ExportFilters, actor *models.User) ([]byte, error) {
	if !isStaff(actor) {
		return nil, s.denied(actor, examID, "export_results")
	}
	if err := s.validator.Validate(&filters); err != nil {
		return nil, err
	}

	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.listSessions(ctx, examID, filters)
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().GetByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam answers: %w", err)
	}

	questions, err := s.repo.Question().GetByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam questions: %w", err)
	}

	stats, err := s.repo.Statistics().GetQuestionStatistics(ctx, nil, examID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sessionsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(answersSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(statisticsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	included := make(map[uint]bool, len(sessions))
	sessionRows := make([][]interface{}, 0, len(sessions))
	for _, session := range sessions {
		included[session.ID] = true
		sessionRows = append(sessionRows, sessionRow(session))
	}
	if err := writeSheet(f, sessionsSheet, []string{
		"Session ID", "Student ID", "Status", "Submitted At", "Graded At",
		"Total Score", "Max Score", "Percentage",
		"Listening Raw", "Listening Band", "Reading Raw", "Reading Band", "Writing Band", "Pending Manual",
	}, sessionRows); err != nil {
		return nil, err
	}

	numbers := make(map[uint]string, len(questions))
	for _, q := range questions {
		if q.QuestionNumber != nil {
			numbers[q.ID] = strconv.Itoa(*q.QuestionNumber)
		}
	}
	answerRows := make([][]interface{}, 0, len(answers))
	for _, a := range answers {
		if !included[a.SessionID] {
			continue
		}
		answerRows = append(answerRows, []interface{}{
			a.SessionID, a.QuestionID, numbers[a.QuestionID],
			verdictLabel(a.IsCorrect, a.GradedAt != nil), a.PointsEarned, a.MaxPoints, derefString(a.GradedBy),
		})
	}
	if err := writeSheet(f, answersSheet, []string{
		"Session ID", "Question ID", "Question Number", "Verdict", "Points Earned", "Max Points", "Graded By",
	}, answerRows); err != nil {
		return nil, err
	}

	statRows := make([][]interface{}, 0, len(stats))
	for _, st := range stats {
		number := ""
		if st.QuestionNumber != nil {
			number = strconv.Itoa(*st.QuestionNumber)
		}
		statRows = append(statRows, []interface{}{
			st.QuestionID, number, st.Type, st.Attempts, st.Correct, st.CorrectRate, st.AveragePoints,
		})
	}
	if err := writeSheet(f, statisticsSheet, []string{
		"Question ID", "Question Number", "Type", "Attempts", "Correct", "Correct Rate (%)", "Average Points",
	}, statRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exam results exported",
		"exam_id", examID,
		"title", exam.Title,
		"sessions", len(sessions),
		"answers", len(answerRows),
		"user_id", actor.ID)

	return buf.Bytes(), nil
}

// GetExamStatistics returns exam-wide averages and per-question correct rates
func (s *exportService) GetExamStatistics(ctx context.Context, examID uint, actor *models.User) (*ExamStatisticsResponse, error) {
	if !isStaff(actor) {
		return nil, s.denied(actor, examID, "view_statistics")
	}
	if _, err := s.getExam(ctx, examID); err != nil {
		return nil, err
	}

	examStats, err := s.repo.Statistics().GetExamStatistics(ctx, nil, examID)
	if err != nil {
		return nil, err
	}
	questionStats, err := s.repo.Statistics().GetQuestionStatistics(ctx, nil, examID)
	if err != nil {
		return nil, err
	}

	return &ExamStatisticsResponse{Exam: examStats, Questions: questionStats}, nil
}

func (s *exportService) getExam(ctx context.Context, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *exportService) listSessions(ctx context.Context, examID uint, filters validator.ExportFilters) ([]*models.ExamSession, error) {
	var all []*models.ExamSession
	query := repositories.SessionFilters{Status: filters.Status, Limit: exportPageSize}
	for {
		page, total, err := s.repo.Session().ListByExam(ctx, nil, examID, query)
		if err != nil {
			return nil, fmt.Errorf("failed to get exam sessions: %w", err)
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		query.Offset += len(page)
	}
}

func (s *exportService) denied(actor *models.User, examID uint, action string) error {
	if actor == nil {
		return ErrUnauthorized
	}
	return NewPermissionError(actor.ID, examID, "exam", action, "insufficient role permissions")
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func sessionRow(session *models.ExamSession) []interface{} {
	return []interface{}{
		session.ID,
		session.StudentID,
		string(session.Status),
		formatTime(session.SubmittedAt),
		formatTime(session.GradedAt),
		session.TotalScore,
		session.MaxScore,
		session.PercentageScore,
		session.ListeningRaw,
		formatBand(session.ListeningBand),
		session.ReadingRaw,
		formatBand(session.ReadingBand),
		formatBand(session.WritingBand),
		session.PendingManual,
	}
}

func verdictLabel(isCorrect *bool, graded bool) string {
	switch {
	case isCorrect != nil && *isCorrect:
		return "correct"
	case isCorrect != nil:
		return "incorrect"
	case graded:
		return "manual"
	default:
		return "pending"
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func formatBand(band *float64) string {
	if band == nil {
		return ""
	}
	return strconv.FormatFloat(*band, 'f', 1, 64)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
