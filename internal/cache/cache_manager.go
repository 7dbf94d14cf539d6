package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheConfig defines cache configuration for different data types
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Exam question definitions change rarely and are read on every submit
	ExamCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "grading:exam:",
	}

	// Display summaries are dropped on every write to the session
	ResultCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "grading:result:",
	}
)

// CacheManager groups the helpers used by the grading service
type CacheManager struct {
	client *redis.Client
	Exam   *CacheHelper
	Result *CacheHelper
}

// NewCacheManager builds the helpers; resultTTL overrides the default when positive.
// A nil client yields helpers that always miss.
func NewCacheManager(client *redis.Client, resultTTL time.Duration) *CacheManager {
	if resultTTL <= 0 {
		resultTTL = ResultCacheConfig.TTL
	}
	return &CacheManager{
		client: client,
		Exam:   NewCacheHelper(client, ExamCacheConfig.Prefix, ExamCacheConfig.TTL),
		Result: NewCacheHelper(client, ResultCacheConfig.Prefix, resultTTL),
	}
}

func ExamQuestionsKey(examID uint) string {
	return fmt.Sprintf("questions:%d", examID)
}

func SessionSummaryKey(sessionID uint) string {
	return fmt.Sprintf("summary:%d", sessionID)
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// InvalidateSession drops everything cached for a session's results
func (cm *CacheManager) InvalidateSession(ctx context.Context, sessionID uint) {
	SafeDelete(ctx, cm.Result, SessionSummaryKey(sessionID))
}

// InvalidateExam drops cached question definitions and every summary, since
// any session of the exam may have been graded against the old definitions
func (cm *CacheManager) InvalidateExam(ctx context.Context, examID uint) {
	SafeDelete(ctx, cm.Exam, ExamQuestionsKey(examID))
	SafeInvalidatePattern(ctx, cm.Result, "summary:*")
}
