package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
	SessionGraded     SessionStatus = "graded"
)

type ExamSession struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	ExamID    uint          `json:"exam_id" gorm:"not null;index"`
	StudentID string        `json:"student_id" gorm:"not null;index;size:255"`
	Status    SessionStatus `json:"status" gorm:"default:in_progress;index"`

	// Scoring
	TotalScore      float64  `json:"total_score"`
	MaxScore        float64  `json:"max_score"`
	PercentageScore float64  `json:"percentage_score"`
	ListeningRaw    int      `json:"listening_raw"`
	ReadingRaw      int      `json:"reading_raw"`
	ListeningBand   *float64 `json:"listening_band"`
	ReadingBand     *float64 `json:"reading_band"`
	WritingBand     *float64 `json:"writing_band"`

	// PendingManual is set while essay/writing/speaking rows wait for a human grader
	PendingManual bool `json:"pending_manual"`

	StartedAt   *time.Time `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Exam    Exam            `json:"exam" gorm:"foreignKey:ExamID"`
	Answers []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:SessionID"`
}

// StudentAnswer is unique per (session, question); every write is an upsert on that pair
type StudentAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SessionID  uint `json:"session_id" gorm:"not null;uniqueIndex:idx_session_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_session_question"`

	// Answer is the submitted value verbatim, except simple_table rows which embed
	// {"type":"simple_table","cells":{...},"graded":[...]}
	Answer datatypes.JSON `json:"answer" gorm:"type:jsonb"`

	IsCorrect    *bool          `json:"is_correct"` // null for manual types
	PointsEarned float64        `json:"points_earned"`
	MaxPoints    float64        `json:"max_points"`
	Breakdown    datatypes.JSON `json:"breakdown,omitempty" gorm:"type:jsonb"`
	Feedback     *string        `json:"feedback,omitempty" gorm:"type:text"`
	GradedBy     *string        `json:"graded_by" gorm:"size:255"`
	GradedAt     *time.Time     `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}
