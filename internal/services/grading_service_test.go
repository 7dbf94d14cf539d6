package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/exam-grading-service/internal/cache"
	"github.com/SAP-F-2025/exam-grading-service/internal/events"
	"github.com/SAP-F-2025/exam-grading-service/internal/grading"
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
	"github.com/SAP-F-2025/exam-grading-service/internal/validator"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

var (
	student = &models.User{ID: "stu-1", Role: models.RoleStudent}
	teacher = &models.User{ID: "t-1", Role: models.RoleTeacher}
)

type gradingFixture struct {
	repo    *MockRepository
	pub     *events.MockEventPublisher
	service *gradingService
}

func newGradingFixture(cacheManager *cache.CacheManager) *gradingFixture {
	logger := discardLogger()
	repo := newMockRepository()
	pub := events.NewMockEventPublisher(logger)
	svc := NewGradingService(repo, grading.NewEngine(2, logger), cacheManager, pub, logger, validator.New()).(*gradingService)
	svc.now = func() time.Time { return fixedNow }
	return &gradingFixture{repo: repo, pub: pub, service: svc}
}

// readingQuestions is a small academic exam: two listening and one reading question
func readingQuestions() []models.Question {
	return []models.Question{
		{ID: 1, ExamID: 7, Type: models.MultipleChoice, Section: models.SectionListening, QuestionNumber: intPtr(1), Points: 1, CorrectAnswer: strPtr("B")},
		{ID: 2, ExamID: 7, Type: models.FillInBlank, Section: models.SectionListening, QuestionNumber: intPtr(2), Points: 1, CorrectAnswer: strPtr("cat|kitten")},
		{ID: 3, ExamID: 7, Type: models.TrueFalse, Section: models.SectionReading, QuestionNumber: intPtr(3), Points: 1, CorrectAnswer: strPtr("TRUE")},
	}
}

// writingQuestions holds both writing tasks, scored on the 0-9 band scale
func writingQuestions() []models.Question {
	return []models.Question{
		{ID: 10, ExamID: 8, Type: models.WritingTask1, Section: models.SectionWriting, Points: 9},
		{ID: 11, ExamID: 8, Type: models.Essay, Section: models.SectionWriting, Points: 9},
	}
}

func readingSession(status models.SessionStatus) *models.ExamSession {
	return &models.ExamSession{
		ID:        1,
		ExamID:    7,
		StudentID: "stu-1",
		Status:    status,
		Exam:      models.Exam{ID: 7, Title: "Academic Mock 1", ExamType: models.ExamAcademic},
	}
}

func writingSession(status models.SessionStatus) *models.ExamSession {
	return &models.ExamSession{
		ID:            2,
		ExamID:        8,
		StudentID:     "stu-1",
		Status:        status,
		PendingManual: status == models.SessionSubmitted,
		Exam:          models.Exam{ID: 8, Title: "Writing Mock", ExamType: models.ExamAcademic},
	}
}

func answerJSON(v string) json.RawMessage { return json.RawMessage(v) }

func captureRows(target *[]*models.StudentAnswer) func(mock.Arguments) {
	return func(args mock.Arguments) {
		*target = args.Get(2).([]*models.StudentAnswer)
	}
}

func rowsByQuestion(rows []*models.StudentAnswer) map[uint]*models.StudentAnswer {
	out := make(map[uint]*models.StudentAnswer, len(rows))
	for _, r := range rows {
		out[r.QuestionID] = r
	}
	return out
}

func TestSubmitSessionGradesAndPersists(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	session := readingSession(models.SessionInProgress)

	saved := []models.StudentAnswer{
		{SessionID: 1, QuestionID: 1, Answer: datatypes.JSON(`"A"`)},
	}

	var persisted []*models.StudentAnswer
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(session, nil)
	f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(1)).Return(saved, nil)
	f.repo.question.On("GetByExam", ctx, mock.Anything, uint(7)).Return(readingQuestions(), nil)
	f.repo.answer.On("UpsertBatch", ctx, mock.Anything, mock.Anything).Run(captureRows(&persisted)).Return(nil)
	f.repo.session.On("UpdateScore", ctx, mock.Anything, session).Return(nil)

	resp, err := f.service.SubmitSession(ctx, 1, &validator.SubmitSessionRequest{
		Answers: []validator.AnswerSubmission{
			{QuestionID: 2, Answer: answerJSON(`"Kitten"`)},
			{QuestionID: 3, Answer: answerJSON(`"true"`)},
			{QuestionID: 1, Answer: answerJSON(`"B"`)},
		},
	}, student)
	require.NoError(t, err)
	f.repo.assertExpectations(t)

	// request answers override the autosaved one
	require.Len(t, persisted, 3)
	rows := rowsByQuestion(persisted)
	assert.JSONEq(t, `"B"`, string(rows[1].Answer))
	for id, row := range rows {
		require.NotNil(t, row.IsCorrect, "question %d", id)
		assert.True(t, *row.IsCorrect, "question %d", id)
		assert.Equal(t, 1.0, row.PointsEarned)
		assert.Nil(t, row.GradedBy)
		require.NotNil(t, row.GradedAt)
		assert.Equal(t, fixedNow, *row.GradedAt)
	}

	assert.Equal(t, models.SessionGraded, resp.Status)
	assert.Equal(t, 3.0, resp.Score.TotalScore)
	assert.Equal(t, 3.0, resp.Score.MaxPossibleScore)
	assert.Equal(t, 100.0, resp.Score.Percentage)
	assert.Equal(t, 2, resp.Score.ListeningRaw)
	assert.Equal(t, 1, resp.Score.ReadingRaw)
	require.NotNil(t, resp.Score.ListeningBand)
	assert.Equal(t, grading.MinBand, *resp.Score.ListeningBand)
	assert.Nil(t, resp.Score.WritingBand)
	assert.Len(t, resp.Answers, 3)

	require.NotNil(t, session.SubmittedAt)
	assert.Equal(t, fixedNow, *session.SubmittedAt)
	require.NotNil(t, session.GradedAt)

	assert.Len(t, f.pub.EventsOfType(events.EventSessionGraded), 1)
	assert.Empty(t, f.pub.EventsOfType(events.EventManualGradingRequired))
}

func TestSubmitSessionAlreadySubmittedReturnsStoredResult(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	session := readingSession(models.SessionGraded)
	session.TotalScore = 2
	session.MaxScore = 3

	stored := []models.StudentAnswer{
		{SessionID: 1, QuestionID: 1, Answer: datatypes.JSON(`"B"`), IsCorrect: boolPtr(true), PointsEarned: 1, MaxPoints: 1},
		{SessionID: 1, QuestionID: 3, Answer: datatypes.JSON(`"false"`), IsCorrect: boolPtr(false), MaxPoints: 1},
	}
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(session, nil)
	f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(1)).Return(stored, nil)

	resp, err := f.service.SubmitSession(ctx, 1, &validator.SubmitSessionRequest{
		Answers: []validator.AnswerSubmission{{QuestionID: 3, Answer: answerJSON(`"true"`)}},
	}, student)
	require.NoError(t, err)

	f.repo.answer.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 2.0, resp.Score.TotalScore)
	assert.Equal(t, stored, resp.Answers)
	assert.Empty(t, f.pub.GetPublishedEvents())
}

func TestSubmitSessionOtherStudentDenied(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionInProgress), nil)

	other := &models.User{ID: "stu-2", Role: models.RoleStudent}
	_, err := f.service.SubmitSession(ctx, 1, &validator.SubmitSessionRequest{}, other)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	var pe *PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "stu-2", pe.UserID)
}

func TestSubmitSessionNotFound(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(9)).Return(nil, repositories.ErrNotFound)

	_, err := f.service.SubmitSession(ctx, 9, &validator.SubmitSessionRequest{}, student)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSaveAnswers(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()

	var saved []*models.StudentAnswer
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionInProgress), nil)
	f.repo.question.On("GetByExam", ctx, mock.Anything, uint(7)).Return(readingQuestions(), nil)
	f.repo.answer.On("SaveRaw", ctx, mock.Anything, mock.Anything).Run(captureRows(&saved)).Return(nil)

	resp, err := f.service.SaveAnswers(ctx, 1, &validator.SaveAnswersRequest{
		Answers: []validator.AnswerSubmission{
			{QuestionID: 1, Answer: answerJSON(`"A"`)},
			{QuestionID: 99, Answer: answerJSON(`"x"`)},
			{QuestionID: 1, Answer: answerJSON(`"C"`)},
			{QuestionID: 2},
		},
	}, student)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Saved)
	assert.Equal(t, []uint{99}, resp.Skipped)
	require.Len(t, saved, 2)
	assert.Equal(t, uint(1), saved[0].QuestionID)
	assert.JSONEq(t, `"C"`, string(saved[0].Answer))
	assert.JSONEq(t, `null`, string(saved[1].Answer))
	assert.Nil(t, saved[0].IsCorrect)
}

func TestSaveAnswersAfterSubmitRejected(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionSubmitted), nil)

	_, err := f.service.SaveAnswers(ctx, 1, &validator.SaveAnswersRequest{
		Answers: []validator.AnswerSubmission{{QuestionID: 1, Answer: answerJSON(`"A"`)}},
	}, student)
	assert.ErrorIs(t, err, ErrSessionAlreadySubmitted)
	assert.True(t, IsConflict(err))
	f.repo.answer.AssertNotCalled(t, "SaveRaw", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveAnswersRejectsMalformedJSON(t *testing.T) {
	f := newGradingFixture(nil)

	_, err := f.service.SaveAnswers(context.Background(), 1, &validator.SaveAnswersRequest{
		Answers: []validator.AnswerSubmission{{QuestionID: 1, Answer: answerJSON(`{"a":`)}},
	}, student)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGetSessionResult(t *testing.T) {
	ctx := context.Background()

	t.Run("in progress", func(t *testing.T) {
		f := newGradingFixture(nil)
		f.repo.session.On("GetByID", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionInProgress), nil)

		_, err := f.service.GetSessionResult(ctx, 1, student)
		assert.ErrorIs(t, err, ErrSessionNotSubmitted)
	})

	t.Run("student view hides correct answers", func(t *testing.T) {
		f := newGradingFixture(nil)
		breakdown := `[{"index":0,"student_answer":"red","correct_answer":"red","is_correct":true},` +
			`{"index":1,"student_answer":"green","correct_answer":"blue","is_correct":false}]`
		stored := []models.StudentAnswer{{
			SessionID: 1, QuestionID: 2, Answer: datatypes.JSON(`["red","green"]`),
			IsCorrect: boolPtr(false), MaxPoints: 1, Breakdown: datatypes.JSON(breakdown),
		}}
		f.repo.session.On("GetByID", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionGraded), nil)
		f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(1)).Return(stored, nil)

		resp, err := f.service.GetSessionResult(ctx, 1, student)
		require.NoError(t, err)
		require.Len(t, resp.Answers, 1)
		assert.NotContains(t, string(resp.Answers[0].Breakdown), "correct_answer")
		// stored rows are left untouched
		assert.Contains(t, string(stored[0].Breakdown), `"correct_answer":"blue"`)

		staffView, err := f.service.GetSessionResult(ctx, 1, teacher)
		require.NoError(t, err)
		assert.Contains(t, string(staffView.Answers[0].Breakdown), `"correct_answer":"blue"`)
	})
}

func TestGetResultSummaryIsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newGradingFixture(cache.NewCacheManager(client, time.Minute))
	ctx := context.Background()

	stored := []models.StudentAnswer{
		{SessionID: 1, QuestionID: 1, IsCorrect: boolPtr(true)},
		{SessionID: 1, QuestionID: 2, IsCorrect: boolPtr(true)},
		{SessionID: 1, QuestionID: 3, IsCorrect: boolPtr(false)},
	}
	f.repo.session.On("GetByID", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionGraded), nil)
	f.repo.question.On("GetByExam", ctx, mock.Anything, uint(7)).Return(readingQuestions(), nil).Once()
	f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(1)).Return(stored, nil).Once()

	first, err := f.service.GetResultSummary(ctx, 1, student)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Summary.Total)
	assert.Equal(t, 2, first.Summary.Correct)
	assert.Equal(t, grading.UnitCount{Total: 1, Correct: 1}, first.Summary.FillBlank)
	assert.True(t, mr.Exists("grading:result:summary:1"))

	second, err := f.service.GetResultSummary(ctx, 1, student)
	require.NoError(t, err)
	assert.Equal(t, first.Summary, second.Summary)
	f.repo.assertExpectations(t)
}

func TestGradeManualAnswer(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	session := writingSession(models.SessionSubmitted)
	questions := writingQuestions()

	stored := []models.StudentAnswer{
		{SessionID: 2, QuestionID: 10, Answer: datatypes.JSON(`"The chart shows..."`), MaxPoints: 9},
		{SessionID: 2, QuestionID: 11, Answer: datatypes.JSON(`"Some people believe..."`), MaxPoints: 9},
	}

	var persisted []*models.StudentAnswer
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(2)).Return(session, nil)
	f.repo.question.On("GetByID", ctx, mock.Anything, uint(11)).Return(&questions[1], nil)
	f.repo.question.On("GetByExam", ctx, mock.Anything, uint(8)).Return(questions, nil)
	f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(2)).Return(stored, nil)
	f.repo.answer.On("UpsertBatch", ctx, mock.Anything, mock.Anything).Run(captureRows(&persisted)).Return(nil)
	f.repo.session.On("UpdateScore", ctx, mock.Anything, session).Return(nil)

	resp, err := f.service.GradeManualAnswer(ctx, 2, 11, &validator.ManualGradeRequest{
		Points:   7,
		Feedback: strPtr("Clear position throughout"),
	}, teacher)
	require.NoError(t, err)

	rows := rowsByQuestion(persisted)
	require.Len(t, rows, 2)
	essay := rows[11]
	assert.Equal(t, 7.0, essay.PointsEarned)
	assert.Nil(t, essay.IsCorrect)
	require.NotNil(t, essay.GradedBy)
	assert.Equal(t, "t-1", *essay.GradedBy)
	assert.Equal(t, "Clear position throughout", *essay.Feedback)
	assert.NotNil(t, essay.GradedAt)

	// task 1 is still waiting for a grader
	assert.Nil(t, rows[10].GradedAt)
	assert.Nil(t, rows[10].GradedBy)

	// (0 + 2*7) / 3 rounds to 4.5
	require.NotNil(t, resp.Score.WritingBand)
	assert.Equal(t, 4.5, *resp.Score.WritingBand)
	assert.Equal(t, 4.5, resp.Score.TotalScore)
	assert.Equal(t, grading.MaxBand, resp.Score.MaxPossibleScore)
	assert.True(t, resp.Score.PendingManual)
	assert.Equal(t, models.SessionSubmitted, resp.Status)

	assert.Len(t, f.pub.EventsOfType(events.EventAnswerManuallyGraded), 1)
	assert.Len(t, f.pub.EventsOfType(events.EventSessionRegraded), 1)
	assert.Len(t, f.pub.EventsOfType(events.EventManualGradingRequired), 1)
}

func TestGradeManualAnswerRejected(t *testing.T) {
	ctx := context.Background()

	t.Run("student", func(t *testing.T) {
		f := newGradingFixture(nil)
		_, err := f.service.GradeManualAnswer(ctx, 2, 11, &validator.ManualGradeRequest{Points: 5}, student)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("points above question maximum", func(t *testing.T) {
		f := newGradingFixture(nil)
		questions := writingQuestions()
		f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(2)).Return(writingSession(models.SessionSubmitted), nil)
		f.repo.question.On("GetByID", ctx, mock.Anything, uint(11)).Return(&questions[1], nil)

		_, err := f.service.GradeManualAnswer(ctx, 2, 11, &validator.ManualGradeRequest{Points: 9.5}, teacher)
		var ruleErr *BusinessRuleError
		require.ErrorAs(t, err, &ruleErr)
		assert.Equal(t, "manual_score_range", ruleErr.Rule)
		assert.Equal(t, 9.0, ruleErr.Context["max_points"])
		assert.True(t, IsBusinessRule(err))
		assert.False(t, IsValidation(err))
	})

	t.Run("negative points", func(t *testing.T) {
		f := newGradingFixture(nil)
		_, err := f.service.GradeManualAnswer(ctx, 2, 11, &validator.ManualGradeRequest{Points: -1}, teacher)
		assert.True(t, IsValidation(err))
	})

	t.Run("auto-graded question", func(t *testing.T) {
		f := newGradingFixture(nil)
		questions := readingQuestions()
		f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionGraded), nil)
		f.repo.question.On("GetByID", ctx, mock.Anything, uint(1)).Return(&questions[0], nil)

		_, err := f.service.GradeManualAnswer(ctx, 1, 1, &validator.ManualGradeRequest{Points: 1}, teacher)
		assert.ErrorIs(t, err, ErrGradingNotAllowed)
	})

	t.Run("question from another exam", func(t *testing.T) {
		f := newGradingFixture(nil)
		questions := readingQuestions()
		f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(2)).Return(writingSession(models.SessionSubmitted), nil)
		f.repo.question.On("GetByID", ctx, mock.Anything, uint(1)).Return(&questions[0], nil)

		_, err := f.service.GradeManualAnswer(ctx, 2, 1, &validator.ManualGradeRequest{Points: 1}, teacher)
		assert.ErrorIs(t, err, ErrQuestionNotFound)
	})

	t.Run("no stored answer", func(t *testing.T) {
		f := newGradingFixture(nil)
		questions := writingQuestions()
		f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(2)).Return(writingSession(models.SessionSubmitted), nil)
		f.repo.question.On("GetByID", ctx, mock.Anything, uint(11)).Return(&questions[1], nil)
		f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(2)).Return([]models.StudentAnswer{}, nil)

		_, err := f.service.GradeManualAnswer(ctx, 2, 11, &validator.ManualGradeRequest{Points: 6}, teacher)
		assert.ErrorIs(t, err, ErrAnswerNotFound)
	})
}

func TestRegradeSessionKeepsManualPoints(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()
	session := writingSession(models.SessionGraded)

	gradedAt := fixedNow.Add(-time.Hour)
	stored := []models.StudentAnswer{
		{SessionID: 2, QuestionID: 10, Answer: datatypes.JSON(`"The chart shows..."`), PointsEarned: 6, MaxPoints: 9,
			GradedBy: strPtr("t-1"), Feedback: strPtr("Good overview"), GradedAt: &gradedAt},
		{SessionID: 2, QuestionID: 11, Answer: datatypes.JSON(`"Some people believe..."`), PointsEarned: 7.5, MaxPoints: 9,
			GradedBy: strPtr("t-2"), GradedAt: &gradedAt},
	}

	var persisted []*models.StudentAnswer
	f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(2)).Return(session, nil)
	f.repo.question.On("InvalidateExam", ctx, uint(8)).Return()
	f.repo.answer.On("GetBySession", ctx, mock.Anything, uint(2)).Return(stored, nil)
	f.repo.question.On("GetByExam", ctx, mock.Anything, uint(8)).Return(writingQuestions(), nil)
	f.repo.answer.On("UpsertBatch", ctx, mock.Anything, mock.Anything).Run(captureRows(&persisted)).Return(nil)
	f.repo.session.On("UpdateScore", ctx, mock.Anything, session).Return(nil)

	resp, err := f.service.RegradeSession(ctx, 2, teacher)
	require.NoError(t, err)
	f.repo.assertExpectations(t)

	rows := rowsByQuestion(persisted)
	assert.Equal(t, 6.0, rows[10].PointsEarned)
	assert.Equal(t, "t-1", *rows[10].GradedBy)
	assert.Equal(t, "Good overview", *rows[10].Feedback)
	assert.Equal(t, 7.5, rows[11].PointsEarned)
	assert.Equal(t, "t-2", *rows[11].GradedBy)

	// (6 + 2*7.5) / 3 = 7
	require.NotNil(t, resp.Score.WritingBand)
	assert.Equal(t, 7.0, *resp.Score.WritingBand)
	assert.False(t, resp.Score.PendingManual)
	assert.Equal(t, models.SessionGraded, resp.Status)

	regraded := f.pub.EventsOfType(events.EventSessionRegraded)
	require.Len(t, regraded, 1)
	payload, ok := regraded[0].Data.(events.SessionGradedEvent)
	require.True(t, ok)
	assert.Equal(t, 7.0, payload.TotalScore)
}

func TestRegradeSessionRejected(t *testing.T) {
	ctx := context.Background()

	t.Run("student", func(t *testing.T) {
		f := newGradingFixture(nil)
		_, err := f.service.RegradeSession(ctx, 1, student)
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("in progress", func(t *testing.T) {
		f := newGradingFixture(nil)
		f.repo.session.On("GetByIDForUpdate", ctx, mock.Anything, uint(1)).Return(readingSession(models.SessionInProgress), nil)

		_, err := f.service.RegradeSession(ctx, 1, teacher)
		assert.ErrorIs(t, err, ErrSessionNotSubmitted)
	})
}

func TestPreviewGrade(t *testing.T) {
	f := newGradingFixture(nil)
	ctx := context.Background()

	res, err := f.service.PreviewGrade(ctx, &validator.PreviewGradeRequest{
		Type:          models.FillInBlank,
		CorrectAnswer: strPtr("red|crimson;blue"),
		Points:        2,
		Answer:        answerJSON(`["Crimson","green"]`),
	})
	require.NoError(t, err)
	require.NotNil(t, res.IsCorrect)
	assert.False(t, *res.IsCorrect)
	assert.Zero(t, res.PointsEarned)
	require.Len(t, res.Breakdown, 2)
	assert.True(t, res.Breakdown[0].IsCorrect)
	assert.False(t, res.Breakdown[1].IsCorrect)

	res, err = f.service.PreviewGrade(ctx, &validator.PreviewGradeRequest{
		Type:          models.MultipleChoice,
		CorrectAnswer: strPtr("B"),
		Points:        1,
		Answer:        answerJSON(`"b"`),
	})
	require.NoError(t, err)
	assert.True(t, *res.IsCorrect)
	assert.Equal(t, 1.0, res.PointsEarned)

	res, err = f.service.PreviewGrade(ctx, &validator.PreviewGradeRequest{
		Type:          models.FillInBlank,
		CorrectAnswer: strPtr("red"),
		Points:        1,
		Answer:        answerJSON(`[]`),
	})
	require.NoError(t, err)
	require.NotNil(t, res.IsCorrect)
	assert.False(t, *res.IsCorrect)

	_, err = f.service.PreviewGrade(ctx, &validator.PreviewGradeRequest{Type: "crossword"})
	assert.True(t, IsValidation(err))

	_, err = f.service.PreviewGrade(ctx, &validator.PreviewGradeRequest{Type: models.SimpleTable, Points: 1})
	assert.True(t, IsValidation(err))
}
