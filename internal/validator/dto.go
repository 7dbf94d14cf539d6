package validator

import (
	"encoding/json"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// AnswerSubmission is one submitted value; QuestionID 0 or an id outside the
// exam is skipped rather than rejected
type AnswerSubmission struct {
	QuestionID uint            `json:"question_id"`
	Answer     json.RawMessage `json:"answer" validate:"omitempty,json_value"`
	IsCorrect  *bool           `json:"is_correct"` // client verdict, used only when no key exists
}

// SubmitSessionRequest finalizes a session; answers merge over autosaved ones
type SubmitSessionRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"max_answers,dive"`
}

// SaveAnswersRequest stores answers without grading
type SaveAnswersRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"required,min=1,max_answers,dive"`
}

// ManualGradeRequest scores an essay, writing or speaking answer
type ManualGradeRequest struct {
	Points   float64 `json:"points" validate:"gte=0"`
	Feedback *string `json:"feedback" validate:"omitempty,max=5000"`
}

// PreviewGradeRequest grades an unsaved question definition against one answer
type PreviewGradeRequest struct {
	Type           models.QuestionType `json:"type" validate:"required,question_type"`
	Section        models.Section      `json:"section" validate:"omitempty,oneof=listening reading writing speaking"`
	QuestionNumber *int                `json:"question_number" validate:"omitempty,min=1"`
	CorrectAnswer  *string             `json:"correct_answer"`
	Metadata       json.RawMessage     `json:"metadata" validate:"omitempty,json_value"`
	Points         float64             `json:"points" validate:"gte=0,lte=100"`
	Answer         json.RawMessage     `json:"answer" validate:"omitempty,json_value"`
	IsCorrect      *bool               `json:"is_correct"`
	ManualPoints   *float64            `json:"manual_points" validate:"omitempty,gte=0"`
}

// ExportFilters narrows the admin export
type ExportFilters struct {
	Status *models.SessionStatus `form:"status" json:"status" validate:"omitempty,oneof=in_progress submitted graded"`
}
