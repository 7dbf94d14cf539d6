package grading

import (
	"encoding/json"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

type UnitCount struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

func (u *UnitCount) add(total, correct int) {
	u.Total += total
	u.Correct += correct
}

// DisplaySummary is the "x of y correct" view of a stored session.
type DisplaySummary struct {
	Total       int       `json:"total"`
	Correct     int       `json:"correct"`
	FillBlank   UnitCount `json:"fill_blank"`
	SimpleTable UnitCount `json:"simple_table"`
	Other       UnitCount `json:"other"`
}

type storedTable struct {
	Type   string         `json:"type"`
	Cells  map[string]any `json:"cells"`
	Graded []CellResult   `json:"graded"`
}

// Summarize counts display units from stored rows only. Multi-blank fill-ins
// count per blank unless the question combines its blanks; tables count per
// graded leaf; manual and container questions are left out.
func Summarize(questions []*CompiledQuestion, answers []models.StudentAnswer) DisplaySummary {
	byID := make(map[uint]*CompiledQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var sum DisplaySummary
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || q.Type.IsContainer() || q.Type.IsManual() {
			continue
		}
		correct := 0
		if a.IsCorrect != nil && *a.IsCorrect {
			correct = 1
		}

		switch q.Type {
		case models.FillInBlank:
			var blanks []BlankResult
			_ = json.Unmarshal(a.Breakdown, &blanks)
			if len(blanks) > 1 && !q.combinesBlanks() {
				n := 0
				for _, b := range blanks {
					if b.IsCorrect {
						n++
					}
				}
				sum.FillBlank.add(len(blanks), n)
			} else {
				sum.FillBlank.add(1, correct)
			}
		case models.SimpleTable:
			var stored storedTable
			_ = json.Unmarshal(a.Answer, &stored)
			n := 0
			for _, leaf := range stored.Graded {
				if leaf.IsCorrect {
					n++
				}
			}
			sum.SimpleTable.add(len(stored.Graded), n)
		default:
			sum.Other.add(1, correct)
		}
	}

	sum.Total = sum.FillBlank.Total + sum.SimpleTable.Total + sum.Other.Total
	sum.Correct = sum.FillBlank.Correct + sum.SimpleTable.Correct + sum.Other.Correct
	return sum
}

// RedactAnswer removes correct answers from a stored row before it is shown
// to a student.
func RedactAnswer(a *models.StudentAnswer) {
	if len(a.Breakdown) > 0 {
		var blanks []BlankResult
		if err := json.Unmarshal(a.Breakdown, &blanks); err == nil {
			for i := range blanks {
				blanks[i].CorrectAnswer = ""
			}
			if b, err := json.Marshal(blanks); err == nil {
				a.Breakdown = b
			}
		}
	}

	var stored storedTable
	if err := json.Unmarshal(a.Answer, &stored); err != nil || stored.Type != string(models.SimpleTable) {
		return
	}
	for i := range stored.Graded {
		stored.Graded[i].CorrectAnswer = ""
	}
	if b, err := json.Marshal(stored); err == nil {
		a.Answer = b
	}
}
