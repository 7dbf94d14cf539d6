package validator

import (
	"fmt"

	"github.com/SAP-F-2025/exam-grading-service/internal/grading"
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// BusinessValidator handles rules that need more than struct tags
type BusinessValidator struct{}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// ValidateManualGrade checks that the question is human-graded and the score fits its points
func (bv *BusinessValidator) ValidateManualGrade(questionType models.QuestionType, points, maxPoints float64) ValidationErrors {
	var errors ValidationErrors

	if !questionType.IsManual() {
		errors = append(errors, ValidationError{
			Field:   "question_type",
			Message: "only essay, writing and speaking answers can be graded manually",
			Value:   questionType,
			Rule:    "business_logic",
		})
	}

	if points < 0 || points > maxPoints {
		errors = append(errors, ValidationError{
			Field:   "points",
			Message: fmt.Sprintf("must be between 0 and %g", maxPoints),
			Value:   points,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidatePreview flags definitions that would grade as unconditionally wrong
func (bv *BusinessValidator) ValidatePreview(req *PreviewGradeRequest) ValidationErrors {
	var errors ValidationErrors

	switch {
	case req.Type == models.SimpleTable:
		meta := grading.ParseMetadata(req.Metadata)
		if len(meta.Map("simpleTable").List("rows")) == 0 {
			errors = append(errors, ValidationError{
				Field:   "metadata",
				Message: "simple_table requires metadata.simpleTable.rows",
				Rule:    "business_logic",
			})
		}
	case req.Type.IsContainer():
		errors = append(errors, ValidationError{
			Field:   "type",
			Message: "table containers are not graded; preview their cells instead",
			Value:   req.Type,
			Rule:    "business_logic",
		})
	case req.Type.IsManual():
		if req.ManualPoints != nil && *req.ManualPoints > req.Points {
			errors = append(errors, ValidationError{
				Field:   "manual_points",
				Message: "must not exceed points",
				Value:   *req.ManualPoints,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}
