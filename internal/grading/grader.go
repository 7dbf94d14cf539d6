package grading

import (
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// Submission is one submitted answer, already decoded from JSON.
type Submission struct {
	QuestionID uint
	Value      any
	Raw        []byte
	// IsCorrect is the client's own verdict, honored only when a question has no key.
	IsCorrect *bool
	// ManualPoints carries a human grade for essay, writing and speaking rows.
	ManualPoints *float64
}

// BlankResult is the per-blank verdict of a multi-blank fill-in.
type BlankResult struct {
	Index          int    `json:"index"`
	QuestionNumber *int   `json:"question_number,omitempty"`
	StudentAnswer  string `json:"student_answer"`
	CorrectAnswer  string `json:"correct_answer,omitempty"`
	IsCorrect      bool   `json:"is_correct"`
}

// GradedAnswer is the result of grading one question.
type GradedAnswer struct {
	QuestionID   uint                `json:"question_id"`
	Type         models.QuestionType `json:"type"`
	IsCorrect    *bool               `json:"is_correct"`
	PointsEarned float64             `json:"points_earned"`
	MaxPoints    float64             `json:"max_points"`
	Breakdown    []BlankResult       `json:"breakdown,omitempty"`
	Cells        []CellResult        `json:"cells,omitempty"`

	Manual     bool `json:"manual,omitempty"`
	Pending    bool `json:"pending,omitempty"`
	Propagated bool `json:"propagated,omitempty"`
	Fallback   bool `json:"fallback,omitempty"`
}

// Grader grades one question kind. Implementations are pure and must not
// panic on malformed input.
type Grader interface {
	Grade(q *CompiledQuestion, sub Submission) GradedAnswer
}

type GraderFunc func(q *CompiledQuestion, sub Submission) GradedAnswer

func (f GraderFunc) Grade(q *CompiledQuestion, sub Submission) GradedAnswer {
	return f(q, sub)
}

// GraderFor dispatches on question type. Unknown types use the client hint.
func GraderFor(t models.QuestionType) Grader {
	switch t {
	case models.MultipleChoice, models.DragDrop, models.Matching, models.MultiSelect:
		return GraderFunc(gradeChoice)
	case models.TrueFalse:
		return GraderFunc(gradeTrueFalse)
	case models.FillInBlank:
		return GraderFunc(gradeFillBlank)
	case models.ShortAnswer:
		return GraderFunc(gradeShortAnswer)
	case models.Essay, models.WritingTask1, models.SpeakingTask:
		return GraderFunc(gradeManual)
	case models.ImageLabeling:
		return GraderFunc(gradeImageLabeling)
	case models.ImageDnD:
		return GraderFunc(gradeImageDnD)
	case models.SimpleTable:
		return GraderFunc(gradeSimpleTable)
	case models.TableFillBlank, models.TableDragDrop:
		return GraderFunc(gradeContainer)
	default:
		return GraderFunc(fallback)
	}
}

// Grade grades a single answer with the grader for its type.
func Grade(q *CompiledQuestion, sub Submission) GradedAnswer {
	res := GraderFor(q.Type).Grade(q, sub)
	res.QuestionID = q.ID
	res.Type = q.Type
	return res
}

func verdict(q *CompiledQuestion, ok bool) GradedAnswer {
	res := GradedAnswer{IsCorrect: &ok, MaxPoints: q.Points}
	if ok {
		res.PointsEarned = q.Points
	}
	return res
}

// fallback trusts the client verdict when the question carries no usable key.
func fallback(q *CompiledQuestion, sub Submission) GradedAnswer {
	res := verdict(q, sub.IsCorrect != nil && *sub.IsCorrect)
	res.Fallback = true
	return res
}

func gradeContainer(q *CompiledQuestion, _ Submission) GradedAnswer {
	return GradedAnswer{}
}

func gradeManual(q *CompiledQuestion, sub Submission) GradedAnswer {
	res := GradedAnswer{MaxPoints: q.Points, Manual: true, Pending: true}
	if sub.ManualPoints != nil {
		res.PointsEarned = clamp(*sub.ManualPoints, 0, q.Points)
		res.Pending = false
	}
	return res
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if hi >= lo && v > hi {
		return hi
	}
	return v
}

// submittedStrings flattens a scalar, an array, or an "a|b" string.
func submittedStrings(v any) []string {
	if list, ok := stringList(v); ok {
		return list
	}
	if s, ok := scalarString(v); ok {
		return []string{s}
	}
	return nil
}
