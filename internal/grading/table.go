package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// TableCell is one gradable cell of a simple table.
type TableCell struct {
	Key            string
	QuestionType   models.QuestionType
	CorrectAnswer  string
	Expect         Expectation
	Points         float64
	QuestionNumber *int
	MultiNumbers   []int
}

// staticBlanks is the blank count known without a submission.
func (c TableCell) staticBlanks() int {
	return max(len(c.MultiNumbers), c.Expect.BlankCount(), 1)
}

// choiceSet reports whether the cell is one choice answer graded as a set.
func (c TableCell) choiceSet() bool {
	return c.QuestionType.IsChoice() && c.staticBlanks() == 1
}

func (c TableCell) blankNumber(i int) *int {
	if i < len(c.MultiNumbers) {
		n := c.MultiNumbers[i]
		return &n
	}
	if c.QuestionNumber != nil {
		n := *c.QuestionNumber + i
		return &n
	}
	return nil
}

type TableDefinition struct {
	Cells []TableCell
}

// MaxPoints is the table's worth when nothing was submitted.
func (t *TableDefinition) MaxPoints() float64 {
	if t == nil {
		return 0
	}
	var total float64
	for _, c := range t.Cells {
		total += c.Points * float64(c.staticBlanks())
	}
	return total
}

// CellResult is one graded leaf. Its JSON shape is persisted inside the
// stored answer under "graded".
type CellResult struct {
	Key            string  `json:"key"`
	QuestionNumber *int    `json:"questionNumber,omitempty"`
	StudentAnswer  *string `json:"studentAnswer"`
	CorrectAnswer  string  `json:"correctAnswer,omitempty"`
	Points         float64 `json:"points"`
	IsCorrect      bool    `json:"isCorrect"`
}

func parseTable(meta Metadata) *TableDefinition {
	rows := meta.Map("simpleTable").List("rows")
	def := &TableDefinition{}
	for r, row := range rows {
		cells, _ := row.([]any)
		for c, raw := range cells {
			cell, ok := raw.(map[string]any)
			if !ok || cell["type"] != "question" {
				continue
			}
			def.Cells = append(def.Cells, parseCell(Metadata(cell), r, c))
		}
	}
	return def
}

func parseCell(cell Metadata, row, col int) TableCell {
	tc := TableCell{
		Key:          fmt.Sprintf("%d_%d", row, col),
		QuestionType: models.FillInBlank,
		Points:       1,
		MultiNumbers: cell.Ints("multiNumbers"),
	}
	if s, ok := scalarString(cell["questionType"]); ok && s != "" {
		tc.QuestionType = models.QuestionType(s)
	}
	if s, ok := scalarString(cell["correctAnswer"]); ok {
		tc.CorrectAnswer = s
	} else if arr, ok := cell["correctAnswer"].([]any); ok {
		b, _ := json.Marshal(arr)
		tc.CorrectAnswer = string(b)
	}
	tc.Expect = ParseEncoding(&tc.CorrectAnswer, 1)
	if p, ok := toFloat(cell["points"]); ok && p > 0 {
		tc.Points = p
	}
	if n, ok := toInt(cell["questionNumber"]); ok {
		tc.QuestionNumber = &n
	}
	return tc
}

// tableCells accepts {"cells": {...}}, a stored table answer, or a bare map.
func tableCells(v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if cells, ok := obj["cells"].(map[string]any); ok {
		return cells
	}
	if _, stored := obj["type"]; stored {
		return nil
	}
	return obj
}

// ExpandTable grades each cell of a simple table into leaves, one per blank.
func ExpandTable(def *TableDefinition, submitted any) (leaves []CellResult, earned, maxPoints float64) {
	cells := tableCells(submitted)
	for _, cell := range def.Cells {
		raw := cells[cell.Key]
		list, isList := stringList(raw)
		if isList && cell.choiceSet() {
			raw, list, isList = strings.Join(list, "|"), nil, false
		}

		blanks := cell.staticBlanks()
		if isList {
			blanks = max(blanks, len(list))
		}

		values := make([]*string, blanks)
		switch {
		case isList:
			for i := range list {
				values[i] = &list[i]
			}
		default:
			if s, ok := scalarString(raw); ok {
				if tokens := splitCellAnswer(s, blanks); tokens != nil {
					for i := range tokens {
						values[i] = &tokens[i]
					}
				} else {
					values[0] = &s
				}
			}
		}

		for i, v := range values {
			group := cell.Expect.Group(i)
			ok := v != nil && gradeBlank(cell.QuestionType, group, *v)
			key := cell.Key
			if blanks > 1 {
				key = fmt.Sprintf("%s_%d", cell.Key, i)
			}
			leaves = append(leaves, CellResult{
				Key:            key,
				QuestionNumber: cell.blankNumber(i),
				StudentAnswer:  v,
				CorrectAnswer:  joinGroup(group),
				Points:         cell.Points,
				IsCorrect:      ok,
			})
			maxPoints += cell.Points
			if ok {
				earned += cell.Points
			}
		}
	}
	return leaves, earned, maxPoints
}

// splitCellAnswer splits a scalar answer for a multi-blank cell. Separators
// are tried in order; the first that yields exactly n tokens wins.
func splitCellAnswer(s string, n int) []string {
	if n <= 1 {
		return nil
	}
	for _, sep := range []string{";", ","} {
		if parts := strings.Split(s, sep); len(parts) == n {
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	if parts := strings.Fields(s); len(parts) == n {
		return parts
	}
	return nil
}

func gradeBlank(t models.QuestionType, group []string, value string) bool {
	switch {
	case t == models.TrueFalse:
		return trueFalseMatch(group, value)
	case t.IsChoice():
		student := choiceSet(value)
		return len(student) > 0 && sameSet(student, group)
	}
	return matchVariant(group, value)
}

func gradeSimpleTable(q *CompiledQuestion, sub Submission) GradedAnswer {
	if q.Table == nil || len(q.Table.Cells) == 0 {
		return fallback(q, sub)
	}
	leaves, earned, maxPoints := ExpandTable(q.Table, sub.Value)
	all := len(leaves) > 0
	for _, l := range leaves {
		all = all && l.IsCorrect
	}
	return GradedAnswer{
		IsCorrect:    &all,
		PointsEarned: earned,
		MaxPoints:    maxPoints,
		Cells:        leaves,
	}
}

// EncodeTableAnswer builds the stored form of a simple table answer.
func EncodeTableAnswer(submitted any, leaves []CellResult) ([]byte, error) {
	cells := tableCells(submitted)
	if cells == nil {
		cells = map[string]any{}
	}
	if leaves == nil {
		leaves = []CellResult{}
	}
	return json.Marshal(map[string]any{
		"type":   string(models.SimpleTable),
		"cells":  cells,
		"graded": leaves,
	})
}
