package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of grading events
type EventType string

const (
	EventSessionGraded         EventType = "session.graded"
	EventSessionRegraded       EventType = "session.regraded"
	EventManualGradingRequired EventType = "grading.manual_required"
	EventAnswerManuallyGraded  EventType = "grading.manual_completed"
)

const (
	eventSource  = "exam-grading-service"
	eventVersion = "1.0"
)

// GradingEvent is the envelope published for every grading event
type GradingEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionGradedEvent struct {
	SessionID       uint      `json:"session_id"`
	ExamID          uint      `json:"exam_id"`
	StudentID       string    `json:"student_id"`
	TotalScore      float64   `json:"total_score"`
	MaxScore        float64   `json:"max_score"`
	PercentageScore float64   `json:"percentage_score"`
	ListeningBand   *float64  `json:"listening_band,omitempty"`
	ReadingBand     *float64  `json:"reading_band,omitempty"`
	WritingBand     *float64  `json:"writing_band,omitempty"`
	PendingManual   bool      `json:"pending_manual"`
	GradedAt        time.Time `json:"graded_at"`
}

type ManualGradingRequiredEvent struct {
	SessionID   uint   `json:"session_id"`
	ExamID      uint   `json:"exam_id"`
	StudentID   string `json:"student_id"`
	QuestionIDs []uint `json:"question_ids"`
}

type AnswerManuallyGradedEvent struct {
	SessionID    uint    `json:"session_id"`
	QuestionID   uint    `json:"question_id"`
	PointsEarned float64 `json:"points_earned"`
	GradedBy     string  `json:"graded_by"`
}

func newEvent(t EventType, data interface{}) *GradingEvent {
	return &GradingEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// NewSessionGradedEvent builds session.graded, or session.regraded when regraded is set
func NewSessionGradedEvent(payload SessionGradedEvent, regraded bool) *GradingEvent {
	if regraded {
		return newEvent(EventSessionRegraded, payload)
	}
	return newEvent(EventSessionGraded, payload)
}

func NewManualGradingRequiredEvent(sessionID, examID uint, studentID string, questionIDs []uint) *GradingEvent {
	return newEvent(EventManualGradingRequired, ManualGradingRequiredEvent{
		SessionID:   sessionID,
		ExamID:      examID,
		StudentID:   studentID,
		QuestionIDs: questionIDs,
	})
}

func NewAnswerManuallyGradedEvent(sessionID, questionID uint, points float64, gradedBy string) *GradingEvent {
	return newEvent(EventAnswerManuallyGraded, AnswerManuallyGradedEvent{
		SessionID:    sessionID,
		QuestionID:   questionID,
		PointsEarned: points,
		GradedBy:     gradedBy,
	})
}
