package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned (wrapped) by every repository lookup that finds no row
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err is a repository or gorm not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository groups the repositories used by the grading service
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Session() SessionRepository
	Answer() AnswerRepository
	Statistics() StatisticsRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
