package models

import (
	"time"

	"gorm.io/gorm"
)

// ExamType selects the reading band table
type ExamType string

const (
	ExamAcademic        ExamType = "academic"
	ExamGeneralTraining ExamType = "general_training"
)

type Exam struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Title    string   `json:"title" gorm:"not null;size:200"`
	ExamType ExamType `json:"exam_type" gorm:"size:30;default:academic"`
	Duration int      `json:"duration"` // minutes

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
}
