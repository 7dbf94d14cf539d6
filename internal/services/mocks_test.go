package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
	"github.com/SAP-F-2025/exam-grading-service/internal/repositories"
)

// MockRepository runs transactions inline with a nil tx
type MockRepository struct {
	mock.Mock
	exam       *MockExamRepository
	question   *MockQuestionRepository
	session    *MockSessionRepository
	answer     *MockAnswerRepository
	statistics *MockStatisticsRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		exam:       &MockExamRepository{},
		question:   &MockQuestionRepository{},
		session:    &MockSessionRepository{},
		answer:     &MockAnswerRepository{},
		statistics: &MockStatisticsRepository{},
	}
}

func (m *MockRepository) Exam() repositories.ExamRepository             { return m.exam }
func (m *MockRepository) Question() repositories.QuestionRepository     { return m.question }
func (m *MockRepository) Session() repositories.SessionRepository       { return m.session }
func (m *MockRepository) Answer() repositories.AnswerRepository         { return m.answer }
func (m *MockRepository) Statistics() repositories.StatisticsRepository { return m.statistics }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepository) assertExpectations(t mock.TestingT) {
	m.exam.AssertExpectations(t)
	m.question.AssertExpectations(t)
	m.session.AssertExpectations(t)
	m.answer.AssertExpectations(t)
	m.statistics.AssertExpectations(t)
}

type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	args := m.Called(ctx, tx, id)
	exam, _ := args.Get(0).(*models.Exam)
	return exam, args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockQuestionRepository) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.Question, error) {
	args := m.Called(ctx, tx, examID)
	questions, _ := args.Get(0).([]models.Question)
	return questions, args.Error(1)
}

func (m *MockQuestionRepository) InvalidateExam(ctx context.Context, examID uint) {
	m.Called(ctx, examID)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	args := m.Called(ctx, tx, id)
	session, _ := args.Get(0).(*models.ExamSession)
	return session, args.Error(1)
}

func (m *MockSessionRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	args := m.Called(ctx, tx, id)
	session, _ := args.Get(0).(*models.ExamSession)
	return session, args.Error(1)
}

func (m *MockSessionRepository) ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	args := m.Called(ctx, tx, examID, filters)
	sessions, _ := args.Get(0).([]*models.ExamSession)
	return sessions, args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) UpdateScore(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]models.StudentAnswer, error) {
	args := m.Called(ctx, tx, sessionID)
	answers, _ := args.Get(0).([]models.StudentAnswer)
	return answers, args.Error(1)
}

func (m *MockAnswerRepository) GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.StudentAnswer, error) {
	args := m.Called(ctx, tx, sessionID, questionID)
	answer, _ := args.Get(0).(*models.StudentAnswer)
	return answer, args.Error(1)
}

func (m *MockAnswerRepository) UpsertBatch(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	args := m.Called(ctx, tx, answers)
	return args.Error(0)
}

func (m *MockAnswerRepository) SaveRaw(ctx context.Context, tx *gorm.DB, answers []*models.StudentAnswer) error {
	args := m.Called(ctx, tx, answers)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]models.StudentAnswer, error) {
	args := m.Called(ctx, tx, examID)
	answers, _ := args.Get(0).([]models.StudentAnswer)
	return answers, args.Error(1)
}

type MockStatisticsRepository struct {
	mock.Mock
}

func (m *MockStatisticsRepository) GetExamStatistics(ctx context.Context, tx *gorm.DB, examID uint) (*repositories.ExamStatistics, error) {
	args := m.Called(ctx, tx, examID)
	stats, _ := args.Get(0).(*repositories.ExamStatistics)
	return stats, args.Error(1)
}

func (m *MockStatisticsRepository) GetQuestionStatistics(ctx context.Context, tx *gorm.DB, examID uint) ([]repositories.QuestionStatistics, error) {
	args := m.Called(ctx, tx, examID)
	stats, _ := args.Get(0).([]repositories.QuestionStatistics)
	return stats, args.Error(1)
}
