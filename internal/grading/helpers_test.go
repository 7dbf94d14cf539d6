package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

type questionOpt func(*models.Question)

func withID(id uint) questionOpt { return func(q *models.Question) { q.ID = id } }

func withPoints(p float64) questionOpt { return func(q *models.Question) { q.Points = p } }

func withSection(s models.Section) questionOpt { return func(q *models.Question) { q.Section = s } }

func withMeta(meta string) questionOpt {
	return func(q *models.Question) { q.Metadata = datatypes.JSON(meta) }
}

func withNumber(n int) questionOpt { return func(q *models.Question) { q.QuestionNumber = &n } }

func newQuestion(t models.QuestionType, correct string, opts ...questionOpt) *CompiledQuestion {
	q := &models.Question{ID: 1, Type: t, Points: 1}
	if correct != "" {
		q.CorrectAnswer = &correct
	}
	for _, opt := range opts {
		opt(q)
	}
	return Compile(q)
}

func jsonSub(t *testing.T, raw string) Submission {
	t.Helper()
	if raw == "" {
		return Submission{}
	}
	v := DecodeValue([]byte(raw))
	require.NotNil(t, v)
	return Submission{Value: v, Raw: []byte(raw)}
}
