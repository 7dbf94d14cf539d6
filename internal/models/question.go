package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillInBlank    QuestionType = "fill_blank"
	ShortAnswer    QuestionType = "short_answer"
	Matching       QuestionType = "matching"
	MultiSelect    QuestionType = "multi_select"
	DragDrop       QuestionType = "drag_drop"
	Essay          QuestionType = "essay"
	WritingTask1   QuestionType = "writing_task1"
	SpeakingTask   QuestionType = "speaking_task"
	ImageLabeling  QuestionType = "image_labeling"
	ImageDnD       QuestionType = "image_dnd"
	SimpleTable    QuestionType = "simple_table"

	// Legacy containers. Their cells are stored as separate questions.
	TableFillBlank QuestionType = "table_fill_blank"
	TableDragDrop  QuestionType = "table_drag_drop"
)

var questionTypes = map[QuestionType]struct{}{
	MultipleChoice: {}, TrueFalse: {}, FillInBlank: {}, ShortAnswer: {}, Matching: {},
	MultiSelect: {}, DragDrop: {}, Essay: {}, WritingTask1: {}, SpeakingTask: {},
	ImageLabeling: {}, ImageDnD: {}, SimpleTable: {}, TableFillBlank: {}, TableDragDrop: {},
}

// IsValid reports whether t is a known question type
func (t QuestionType) IsValid() bool {
	_, ok := questionTypes[t]
	return ok
}

// IsContainer reports whether t is a legacy container that is never scored directly
func (t QuestionType) IsContainer() bool {
	return t == TableFillBlank || t == TableDragDrop
}

// IsChoice reports whether t is answered by picking options, graded as a set
func (t QuestionType) IsChoice() bool {
	return t == MultipleChoice || t == DragDrop || t == Matching || t == MultiSelect
}

// IsManual reports whether t requires a human grader
func (t QuestionType) IsManual() bool {
	return t == Essay || t == WritingTask1 || t == SpeakingTask
}

// Section is the IELTS skill a question belongs to
type Section string

const (
	SectionListening Section = "listening"
	SectionReading   Section = "reading"
	SectionWriting   Section = "writing"
	SectionSpeaking  Section = "speaking"
)

type Question struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	ExamID         uint         `json:"exam_id" gorm:"not null;index"`
	Section        Section      `json:"section" gorm:"size:20;index"`
	QuestionNumber *int         `json:"question_number"`
	Order          int          `json:"order" gorm:"default:0"`
	Type           QuestionType `json:"type" gorm:"not null;index"`
	Text           string       `json:"text" gorm:"type:text"`
	Points         float64      `json:"points" gorm:"default:1"`

	// CorrectAnswer holds the raw encoding: "a|b", "red;blue", `["x",["y","z"]]` ...
	CorrectAnswer *string `json:"correct_answer,omitempty" gorm:"type:text"`
	// Metadata is an open bag of per-type extras; legacy rows store it JSON-stringified
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
