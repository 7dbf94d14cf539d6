package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-grading-service/internal/cache"
	"github.com/SAP-F-2025/exam-grading-service/internal/events"
	"github.com/SAP-F-2025/exam-grading-service/internal/grading"
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

// previewQuestionID stands in for the id of an unsaved question
const previewQuestionID = 1

type gradingService struct {
	repo      repositories.Repository
	engine    *grading.Engine
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewGradingService(repo repositories.Repository, engine *grading.Engine, cacheManager *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) GradingService {
	return &gradingService{
		repo:      repo,
		engine:    engine,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

// ===== STUDENT FLOW =====

// SaveAnswers autosaves raw answers while the session is in progress
func (s *gradingService) SaveAnswers(ctx context.Context, sessionID uint, req *validator.SaveAnswersRequest, actor *models.User) (*SaveAnswersResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	resp := &SaveAnswersResponse{SessionID: sessionID, SavedAt: now}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		session, err := s.loadSession(ctx, tx, sessionID, true)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(session, actor, "save_answers"); err != nil {
			return err
		}
		if session.Status != models.SessionInProgress {
			return ErrSessionAlreadySubmitted
		}

		questions, err := s.repo.Question().GetByExam(ctx, tx, session.ExamID)
		if err != nil {
			return fmt.Errorf("failed to get exam questions: %w", err)
		}
		known := make(map[uint]struct{}, len(questions))
		for _, q := range questions {
			known[q.ID] = struct{}{}
		}

		// last write wins within one request
		latest := make(map[uint]*models.StudentAnswer, len(req.Answers))
		var order []uint
		for _, item := range req.Answers {
			if _, ok := known[item.QuestionID]; !ok {
				resp.Skipped = append(resp.Skipped, item.QuestionID)
				continue
			}
			if _, seen := latest[item.QuestionID]; !seen {
				order = append(order, item.QuestionID)
			}
			latest[item.QuestionID] = &models.StudentAnswer{
				SessionID:  sessionID,
				QuestionID: item.QuestionID,
				Answer:     rawJSON(item.Answer),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		}

		rows := make([]*models.StudentAnswer, 0, len(order))
		for _, qid := range order {
			rows = append(rows, latest[qid])
		}
		if err := s.repo.Answer().SaveRaw(ctx, tx, rows); err != nil {
			return err
		}
		resp.Saved = len(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Answers autosaved",
		"session_id", sessionID,
		"saved", resp.Saved,
		"skipped", len(resp.Skipped))

	return resp, nil
}

// SubmitSession grades the session once. Request answers override autosaved
// ones; a session that is already submitted returns its stored result.
func (s *gradingService) SubmitSession(ctx context.Context, sessionID uint, req *validator.SubmitSessionRequest, actor *models.User) (*SessionResultResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Submitting session", "session_id", sessionID, "answers", len(req.Answers))

	var (
		session    *models.ExamSession
		outcome    *gradeOutcome
		storedRows []models.StudentAnswer
	)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		session, err = s.loadSession(ctx, tx, sessionID, true)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(session, actor, "submit"); err != nil {
			return err
		}

		saved, err := s.repo.Answer().GetBySession(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get saved answers: %w", err)
		}

		if session.Status != models.SessionInProgress {
			storedRows = saved
			return nil
		}

		subs := submissionsFromRows(saved)
		subs = append(subs, submissionsFromRequest(req.Answers)...)

		now := s.now()
		session.SubmittedAt = &now
		outcome, err = s.gradeAndPersist(ctx, tx, session, subs, indexRows(saved), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if outcome == nil {
		s.logger.Info("Session already submitted, returning stored result", "session_id", sessionID)
		return s.toResponse(session, storedRows, actor), nil
	}

	s.afterGrading(ctx, session, outcome, false)

	s.logger.Info("Session graded",
		"session_id", sessionID,
		"graded", len(outcome.rows),
		"unknown", len(outcome.result.Unknown),
		"total_score", session.TotalScore,
		"max_score", session.MaxScore,
		"pending_manual", session.PendingManual)

	return s.toResponse(session, derefRows(outcome.rows), actor), nil
}

// GetSessionResult returns stored verdicts and the session score
func (s *gradingService) GetSessionResult(ctx context.Context, sessionID uint, actor *models.User) (*SessionResultResponse, error) {
	session, err := s.loadSession(ctx, nil, sessionID, false)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(session, actor, "view_result"); err != nil {
		return nil, err
	}
	if session.Status == models.SessionInProgress {
		return nil, ErrSessionNotSubmitted
	}

	answers, err := s.repo.Answer().GetBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session answers: %w", err)
	}

	return s.toResponse(session, answers, actor), nil
}

// GetResultSummary recomputes "x of y correct" from stored rows (cached)
func (s *gradingService) GetResultSummary(ctx context.Context, sessionID uint, actor *models.User) (*ResultSummaryResponse, error) {
	session, err := s.loadSession(ctx, nil, sessionID, false)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(session, actor, "view_summary"); err != nil {
		return nil, err
	}
	if session.Status == models.SessionInProgress {
		return nil, ErrSessionNotSubmitted
	}

	fetch := func() (interface{}, error) {
		questions, err := s.loadQuestions(ctx, nil, session.ExamID)
		if err != nil {
			return nil, err
		}
		answers, err := s.repo.Answer().GetBySession(ctx, nil, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session answers: %w", err)
		}
		return grading.Summarize(questions, answers), nil
	}

	var summary grading.DisplaySummary
	if s.cache != nil {
		err = s.cache.Result.CacheOrExecute(ctx, cache.SessionSummaryKey(sessionID), &summary, fetch)
	} else {
		var v interface{}
		if v, err = fetch(); err == nil {
			summary = v.(grading.DisplaySummary)
		}
	}
	if err != nil {
		return nil, err
	}

	return &ResultSummaryResponse{
		SessionID: sessionID,
		Status:    session.Status,
		Summary:   summary,
		Score:     sessionScore(session),
	}, nil
}

// ===== ADMIN FLOW =====

// RegradeSession re-runs grading over stored answers with fresh question
// definitions. Manual points survive.
func (s *gradingService) RegradeSession(ctx context.Context, sessionID uint, actor *models.User) (*SessionResultResponse, error) {
	if err := s.checkStaff(actor, sessionID, "regrade"); err != nil {
		return nil, err
	}

	s.logger.Info("Regrading session", "session_id", sessionID, "user_id", actor.ID)

	var (
		session *models.ExamSession
		outcome *gradeOutcome
	)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		session, err = s.loadSession(ctx, tx, sessionID, true)
		if err != nil {
			return err
		}
		if session.Status == models.SessionInProgress {
			return ErrSessionNotSubmitted
		}

		s.repo.Question().InvalidateExam(ctx, session.ExamID)

		stored, err := s.repo.Answer().GetBySession(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get session answers: %w", err)
		}

		outcome, err = s.gradeAndPersist(ctx, tx, session, submissionsFromRows(stored), indexRows(stored), nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterGrading(ctx, session, outcome, true)

	s.logger.Info("Session regraded",
		"session_id", sessionID,
		"total_score", session.TotalScore,
		"max_score", session.MaxScore)

	return s.toResponse(session, derefRows(outcome.rows), actor), nil
}

// GradeManualAnswer records a human score for an essay, writing or speaking
// answer and re-aggregates the session
func (s *gradingService) GradeManualAnswer(ctx context.Context, sessionID, questionID uint, req *validator.ManualGradeRequest, actor *models.User) (*SessionResultResponse, error) {
	if err := s.checkStaff(actor, sessionID, "grade"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Manually grading answer",
		"session_id", sessionID,
		"question_id", questionID,
		"points", req.Points,
		"grader_id", actor.ID)

	var (
		session *models.ExamSession
		outcome *gradeOutcome
	)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		session, err = s.loadSession(ctx, tx, sessionID, true)
		if err != nil {
			return err
		}
		if session.Status == models.SessionInProgress {
			return ErrSessionNotSubmitted
		}

		question, err := s.repo.Question().GetByID(ctx, tx, questionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}
		if question.ExamID != session.ExamID {
			return ErrQuestionNotFound
		}
		if !question.Type.IsManual() {
			return fmt.Errorf("%w: %s", ErrGradingNotAllowed, question.Type)
		}
		if errs := s.validator.Business().ValidateManualGrade(question.Type, req.Points, question.Points); len(errs) > 0 {
			return NewBusinessRuleError("manual_score_range", errs.Error(), map[string]interface{}{
				"question_id": questionID,
				"points":      req.Points,
				"max_points":  question.Points,
			})
		}

		stored, err := s.repo.Answer().GetBySession(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get session answers: %w", err)
		}
		existing := indexRows(stored)
		if _, ok := existing[questionID]; !ok {
			return ErrAnswerNotFound
		}

		subs := submissionsFromRows(stored)
		points := req.Points
		for i := range subs {
			if subs[i].QuestionID == questionID {
				subs[i].ManualPoints = &points
			}
		}

		outcome, err = s.gradeAndPersist(ctx, tx, session, subs, existing, &manualOverride{
			questionID: questionID,
			graderID:   actor.ID,
			feedback:   req.Feedback,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewAnswerManuallyGradedEvent(sessionID, questionID, req.Points, actor.ID))
	s.afterGrading(ctx, session, outcome, true)

	return s.toResponse(session, derefRows(outcome.rows), actor), nil
}

// PreviewGrade grades an unsaved definition against one answer
func (s *gradingService) PreviewGrade(ctx context.Context, req *validator.PreviewGradeRequest) (*grading.GradedAnswer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.Business().ValidatePreview(req); len(errs) > 0 {
		return nil, errs
	}

	question := &models.Question{
		ID:             previewQuestionID,
		Type:           req.Type,
		Section:        req.Section,
		QuestionNumber: req.QuestionNumber,
		Points:         req.Points,
		CorrectAnswer:  req.CorrectAnswer,
		Metadata:       datatypes.JSON(req.Metadata),
	}

	res := grading.Grade(grading.Compile(question), grading.Submission{
		QuestionID:   previewQuestionID,
		Value:        grading.DecodeValue(req.Answer),
		Raw:          req.Answer,
		IsCorrect:    req.IsCorrect,
		ManualPoints: req.ManualPoints,
	})

	s.logger.Debug("Preview graded", "type", req.Type, "points_earned", res.PointsEarned)

	return &res, nil
}
