package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-grading-service/internal/events"
	"github.com/SAP-F-2025/exam-grading-service/internal/grading"
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

// gradeOutcome is what one grading pass wrote
type gradeOutcome struct {
	result  *grading.SessionResult
	rows    []*models.StudentAnswer
	pending []uint
}

// manualOverride attributes a fresh human grade to the grader
type manualOverride struct {
	questionID uint
	graderID   string
	feedback   *string
}

// ===== GRADING PIPELINE =====

// gradeAndPersist grades subs against the exam, upserts every graded row and
// the session score inside tx. session is updated in place.
func (s *gradingService) gradeAndPersist(ctx context.Context, tx *gorm.DB, session *models.ExamSession, subs []grading.Submission, existing map[uint]*models.StudentAnswer, override *manualOverride) (*gradeOutcome, error) {
	questions, err := s.loadQuestions(ctx, tx, session.ExamID)
	if err != nil {
		return nil, err
	}

	result := s.engine.GradeSession(questions, subs, session.Exam.ExamType)
	if len(result.Unknown) > 0 {
		s.logger.Warn("Submitted answers reference questions outside the exam",
			"session_id", session.ID,
			"question_ids", result.Unknown)
	}

	raw := make(map[uint][]byte, len(subs))
	for _, sub := range subs {
		raw[sub.QuestionID] = sub.Raw
	}

	now := s.now()
	outcome := &gradeOutcome{result: result}
	for _, res := range result.Answers {
		if res.Type.IsContainer() {
			continue
		}
		row, err := buildAnswerRow(session.ID, res, raw[res.QuestionID], existing[res.QuestionID], now)
		if err != nil {
			return nil, err
		}
		if override != nil && override.questionID == res.QuestionID {
			grader := override.graderID
			row.GradedBy = &grader
			row.Feedback = override.feedback
		}
		if res.Pending {
			outcome.pending = append(outcome.pending, res.QuestionID)
		}
		outcome.rows = append(outcome.rows, row)
	}

	if err := s.repo.Answer().UpsertBatch(ctx, tx, outcome.rows); err != nil {
		return nil, err
	}

	applyScore(session, result.Score, now)
	if err := s.repo.Session().UpdateScore(ctx, tx, session); err != nil {
		return nil, err
	}

	return outcome, nil
}

// buildAnswerRow converts a verdict into its stored form. Grader and feedback
// of a previous human grade are carried over.
func buildAnswerRow(sessionID uint, res *grading.GradedAnswer, raw []byte, prev *models.StudentAnswer, now time.Time) (*models.StudentAnswer, error) {
	row := &models.StudentAnswer{
		SessionID:    sessionID,
		QuestionID:   res.QuestionID,
		Answer:       rawJSON(raw),
		IsCorrect:    res.IsCorrect,
		PointsEarned: res.PointsEarned,
		MaxPoints:    res.MaxPoints,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if res.Type == models.SimpleTable {
		encoded, err := grading.EncodeTableAnswer(grading.DecodeValue(raw), res.Cells)
		if err != nil {
			return nil, fmt.Errorf("failed to encode table answer for question %d: %w", res.QuestionID, err)
		}
		row.Answer = encoded
	}

	if len(res.Breakdown) > 0 {
		breakdown, err := json.Marshal(res.Breakdown)
		if err != nil {
			return nil, fmt.Errorf("failed to encode breakdown for question %d: %w", res.QuestionID, err)
		}
		row.Breakdown = breakdown
	}

	// ungraded group members and manual rows awaiting a grade keep a nil GradedAt
	if !res.Pending && (res.IsCorrect != nil || res.Manual) {
		gradedAt := now
		row.GradedAt = &gradedAt
	}

	if res.Manual && !res.Pending && prev != nil {
		row.GradedBy = prev.GradedBy
		row.Feedback = prev.Feedback
	}

	return row, nil
}

// applyScore copies an aggregate onto the session and moves its status
func applyScore(session *models.ExamSession, score grading.SessionScore, now time.Time) {
	session.TotalScore = score.TotalScore
	session.MaxScore = score.MaxPossibleScore
	session.PercentageScore = score.Percentage
	session.ListeningRaw = score.ListeningRaw
	session.ReadingRaw = score.ReadingRaw
	session.ListeningBand = score.ListeningBand
	session.ReadingBand = score.ReadingBand
	session.WritingBand = score.WritingBand
	session.PendingManual = score.PendingManual
	session.UpdatedAt = now

	if score.PendingManual {
		session.Status = models.SessionSubmitted
		session.GradedAt = nil
		return
	}
	session.Status = models.SessionGraded
	session.GradedAt = &now
}

func sessionScore(session *models.ExamSession) grading.SessionScore {
	return grading.SessionScore{
		TotalScore:       session.TotalScore,
		MaxPossibleScore: session.MaxScore,
		Percentage:       session.PercentageScore,
		ListeningRaw:     session.ListeningRaw,
		ReadingRaw:       session.ReadingRaw,
		ListeningBand:    session.ListeningBand,
		ReadingBand:      session.ReadingBand,
		WritingBand:      session.WritingBand,
		PendingManual:    session.PendingManual,
	}
}

// afterGrading runs once the transaction has committed
func (s *gradingService) afterGrading(ctx context.Context, session *models.ExamSession, outcome *gradeOutcome, regraded bool) {
	if s.cache != nil {
		s.cache.InvalidateSession(ctx, session.ID)
	}

	gradedAt := s.now()
	if session.GradedAt != nil {
		gradedAt = *session.GradedAt
	}
	s.publish(ctx, events.NewSessionGradedEvent(events.SessionGradedEvent{
		SessionID:       session.ID,
		ExamID:          session.ExamID,
		StudentID:       session.StudentID,
		TotalScore:      session.TotalScore,
		MaxScore:        session.MaxScore,
		PercentageScore: session.PercentageScore,
		ListeningBand:   session.ListeningBand,
		ReadingBand:     session.ReadingBand,
		WritingBand:     session.WritingBand,
		PendingManual:   session.PendingManual,
		GradedAt:        gradedAt,
	}, regraded))

	if len(outcome.pending) > 0 {
		s.publish(ctx, events.NewManualGradingRequiredEvent(session.ID, session.ExamID, session.StudentID, outcome.pending))
	}
}

// publish never fails the request; a lost event is logged
func (s *gradingService) publish(ctx context.Context, event *events.GradingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish grading event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// ===== LOADING & ACCESS =====

func (s *gradingService) loadSession(ctx context.Context, tx *gorm.DB, sessionID uint, forUpdate bool) (*models.ExamSession, error) {
	var (
		session *models.ExamSession
		err     error
	)
	if forUpdate {
		session, err = s.repo.Session().GetByIDForUpdate(ctx, tx, sessionID)
	} else {
		session, err = s.repo.Session().GetByID(ctx, tx, sessionID)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *gradingService) loadQuestions(ctx context.Context, tx *gorm.DB, examID uint) ([]*grading.CompiledQuestion, error) {
	questions, err := s.repo.Question().GetByExam(ctx, tx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam questions: %w", err)
	}
	return grading.CompileAll(questions), nil
}

// checkOwnership lets students reach their own sessions and staff reach any
func (s *gradingService) checkOwnership(session *models.ExamSession, actor *models.User, action string) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if isStaff(actor) || session.StudentID == actor.ID {
		return nil
	}
	return NewPermissionError(actor.ID, session.ID, "session", action, "session belongs to another student")
}

func (s *gradingService) checkStaff(actor *models.User, sessionID uint, action string) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if !isStaff(actor) {
		return NewPermissionError(actor.ID, sessionID, "session", action, "insufficient role permissions")
	}
	return nil
}

func isStaff(actor *models.User) bool {
	return actor != nil && (actor.Role == models.RoleAdmin || actor.Role == models.RoleTeacher)
}

// toResponse shapes stored rows; students never see correct answers
func (s *gradingService) toResponse(session *models.ExamSession, answers []models.StudentAnswer, actor *models.User) *SessionResultResponse {
	out := make([]models.StudentAnswer, len(answers))
	copy(out, answers)
	if !isStaff(actor) {
		for i := range out {
			grading.RedactAnswer(&out[i])
		}
	}

	return &SessionResultResponse{
		SessionID:   session.ID,
		ExamID:      session.ExamID,
		StudentID:   session.StudentID,
		Status:      session.Status,
		Score:       sessionScore(session),
		Answers:     out,
		SubmittedAt: session.SubmittedAt,
		GradedAt:    session.GradedAt,
	}
}

// ===== CONVERSIONS =====

// submissionsFromRows rebuilds submissions from stored rows. A stored verdict
// doubles as the client hint, and rows a human graded keep their points.
func submissionsFromRows(rows []models.StudentAnswer) []grading.Submission {
	subs := make([]grading.Submission, 0, len(rows))
	for _, row := range rows {
		sub := grading.Submission{
			QuestionID: row.QuestionID,
			Value:      grading.DecodeValue(row.Answer),
			Raw:        row.Answer,
			IsCorrect:  row.IsCorrect,
		}
		if row.GradedBy != nil {
			points := row.PointsEarned
			sub.ManualPoints = &points
		}
		subs = append(subs, sub)
	}
	return subs
}

func submissionsFromRequest(items []validator.AnswerSubmission) []grading.Submission {
	subs := make([]grading.Submission, 0, len(items))
	for _, item := range items {
		if item.QuestionID == 0 {
			continue
		}
		subs = append(subs, grading.Submission{
			QuestionID: item.QuestionID,
			Value:      grading.DecodeValue(item.Answer),
			Raw:        item.Answer,
			IsCorrect:  item.IsCorrect,
		})
	}
	return subs
}

func indexRows(rows []models.StudentAnswer) map[uint]*models.StudentAnswer {
	index := make(map[uint]*models.StudentAnswer, len(rows))
	for i := range rows {
		index[rows[i].QuestionID] = &rows[i]
	}
	return index
}

func derefRows(rows []*models.StudentAnswer) []models.StudentAnswer {
	out := make([]models.StudentAnswer, len(rows))
	for i, row := range rows {
		out[i] = *row
	}
	return out
}

// rawJSON stores an absent answer as JSON null
func rawJSON(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
