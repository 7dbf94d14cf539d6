package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

func storedRow(t *testing.T, q *CompiledQuestion, res GradedAnswer, value any) models.StudentAnswer {
	t.Helper()
	row := models.StudentAnswer{QuestionID: q.ID, IsCorrect: res.IsCorrect, PointsEarned: res.PointsEarned}
	if q.Type == models.SimpleTable {
		raw, err := EncodeTableAnswer(value, res.Cells)
		require.NoError(t, err)
		row.Answer = raw
	} else {
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		row.Answer = raw
	}
	if len(res.Breakdown) > 0 {
		raw, err := json.Marshal(res.Breakdown)
		require.NoError(t, err)
		row.Breakdown = datatypes.JSON(raw)
	}
	return row
}

func TestSummarize(t *testing.T) {
	questions := []*CompiledQuestion{
		newQuestion(models.FillInBlank, "red;blue", withID(1)),
		newQuestion(models.FillInBlank, "red;blue", withID(2), withMeta(`{"combineBlanks":true}`)),
		newQuestion(models.SimpleTable, "", withID(3), withMeta(tableMeta)),
		newQuestion(models.MultipleChoice, "A", withID(4)),
		newQuestion(models.Essay, "", withID(5)),
		newQuestion(models.TableDragDrop, "", withID(6)),
	}
	values := map[uint]any{
		1: []any{"red", "green"},
		2: []any{"red", "green"},
		3: DecodeValue([]byte(`{"cells":{"0_1":"red,blue"}}`)),
		4: "A",
		5: "essay",
		6: "x",
	}
	var rows []models.StudentAnswer
	for _, q := range questions {
		res := Grade(q, Submission{Value: values[q.ID]})
		rows = append(rows, storedRow(t, q, res, values[q.ID]))
	}
	rows = append(rows, models.StudentAnswer{QuestionID: 99})

	sum := Summarize(questions, rows)
	assert.Equal(t, UnitCount{Total: 3, Correct: 1}, sum.FillBlank)
	assert.Equal(t, UnitCount{Total: 4, Correct: 2}, sum.SimpleTable)
	assert.Equal(t, UnitCount{Total: 1, Correct: 1}, sum.Other)
	assert.Equal(t, 8, sum.Total)
	assert.Equal(t, 4, sum.Correct)
}

func TestRedactAnswer(t *testing.T) {
	fill := newQuestion(models.FillInBlank, "red;blue")
	res := Grade(fill, Submission{Value: []any{"red", "x"}})
	row := storedRow(t, fill, res, []any{"red", "x"})
	RedactAnswer(&row)
	assert.NotContains(t, string(row.Breakdown), "correct_answer")
	assert.Contains(t, string(row.Breakdown), "student_answer")

	table := tableQuestion()
	value := DecodeValue([]byte(`{"cells":{"1_0":"7"}}`))
	row = storedRow(t, table, Grade(table, Submission{Value: value}), value)
	require.Contains(t, string(row.Answer), "correctAnswer")
	RedactAnswer(&row)
	assert.NotContains(t, string(row.Answer), "correctAnswer")
	assert.Contains(t, string(row.Answer), `"graded"`)

	plain := models.StudentAnswer{Answer: datatypes.JSON(`"A"`)}
	RedactAnswer(&plain)
	assert.Equal(t, `"A"`, string(plain.Answer))
}
