package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

func groupQuestions() []*CompiledQuestion {
	return []*CompiledQuestion{
		newQuestion(models.MultiSelect, `["A","C"]`, withID(10), withPoints(1), withMeta(`{"groupRangeEnd":12}`)),
		newQuestion(models.MultiSelect, "", withID(11), withPoints(1), withMeta(`{"groupMemberOf":10}`)),
		newQuestion(models.MultiSelect, "", withID(12), withPoints(2), withMeta(`{"groupMemberOf":"10"}`)),
		newQuestion(models.MultipleChoice, "B", withID(13)),
	}
}

func TestResolveGroupsPropagatesAnchorVerdict(t *testing.T) {
	questions := groupQuestions()
	results := map[uint]*GradedAnswer{
		10: {QuestionID: 10, IsCorrect: boolPtr(true), PointsEarned: 1, MaxPoints: 1},
		11: {QuestionID: 11, IsCorrect: boolPtr(false), MaxPoints: 1},
	}

	written := ResolveGroups(questions, results)
	assert.Equal(t, []uint{11, 12}, written)

	require.Contains(t, results, uint(12))
	assert.True(t, *results[11].IsCorrect)
	assert.Equal(t, 1.0, results[11].PointsEarned)
	assert.True(t, *results[12].IsCorrect)
	assert.Equal(t, 2.0, results[12].PointsEarned)
	assert.True(t, results[12].Propagated)
	assert.NotContains(t, results, uint(13))
}

func TestResolveGroupsIncorrectAnchor(t *testing.T) {
	results := map[uint]*GradedAnswer{
		10: {QuestionID: 10, IsCorrect: boolPtr(false), MaxPoints: 1},
	}
	ResolveGroups(groupQuestions(), results)
	assert.False(t, *results[11].IsCorrect)
	assert.Zero(t, results[12].PointsEarned)
	assert.Equal(t, 2.0, results[12].MaxPoints)
}

func TestResolveGroupsSkipsUnansweredAnchor(t *testing.T) {
	results := map[uint]*GradedAnswer{}
	assert.Empty(t, ResolveGroups(groupQuestions(), results))
	assert.Empty(t, results)
}
