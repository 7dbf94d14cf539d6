package grading

import (
	"strings"
)

// gradeFillBlank grades one or more blanks. Every blank must match its own
// group, by position.
func gradeFillBlank(q *CompiledQuestion, sub Submission) GradedAnswer {
	if q.Expect.Empty() {
		return fallback(q, sub)
	}
	values, isList := stringList(sub.Value)
	if !isList {
		s, _ := scalarString(sub.Value)
		values = []string{s}
	}
	if len(values) == 0 {
		return verdict(q, false)
	}

	blanks := max(len(values), q.Expect.BlankCount())
	if blanks == 1 {
		return verdict(q, matchVariant(q.Expect.Group(0), values[0]))
	}

	all := true
	breakdown := make([]BlankResult, blanks)
	for i := range breakdown {
		var student string
		if i < len(values) {
			student = values[i]
		}
		group := q.Expect.Group(i)
		ok := matchVariant(group, student)
		all = all && ok
		breakdown[i] = BlankResult{
			Index:          i,
			QuestionNumber: q.blankNumber(i),
			StudentAnswer:  student,
			CorrectAnswer:  joinGroup(group),
			IsCorrect:      ok,
		}
	}
	res := verdict(q, all)
	res.Breakdown = breakdown
	return res
}

const maxShortAnswerWords = 3

// gradeShortAnswer accepts 1 to 3 words matching an accepted answer once
// punctuation is dropped.
func gradeShortAnswer(q *CompiledQuestion, sub Submission) GradedAnswer {
	if len(q.Accepted) == 0 {
		return fallback(q, sub)
	}
	s, ok := scalarString(sub.Value)
	if !ok {
		if list := submittedStrings(sub.Value); len(list) == 1 {
			s = list[0]
		}
	}
	got := stripPunctuation(s)
	if words := len(strings.Fields(got)); words < 1 || words > maxShortAnswerWords {
		return verdict(q, false)
	}
	for _, a := range q.Accepted {
		if a == got {
			return verdict(q, true)
		}
	}
	return verdict(q, false)
}

func gradeImageLabeling(q *CompiledQuestion, sub Submission) GradedAnswer {
	if q.Expect.Empty() {
		return fallback(q, sub)
	}
	values := submittedStrings(sub.Value)
	if len(values) != 1 {
		return verdict(q, false)
	}
	return verdict(q, matchVariant(q.Expect.Group(0), values[0]))
}

// gradeImageDnD compares the placement map with metadata.correctMap. All
// anchors must be placed correctly and nothing extra may be placed.
func gradeImageDnD(q *CompiledQuestion, sub Submission) GradedAnswer {
	correct := q.Meta.Map("correctMap")
	if len(correct) == 0 {
		return fallback(q, sub)
	}
	obj, _ := sub.Value.(map[string]any)
	placements, _ := obj["placements"].(map[string]any)
	if len(placements) == 0 {
		return verdict(q, false)
	}

	placed := 0
	for _, v := range placements {
		if s, ok := scalarString(v); ok && NormalizeText(s) != "" {
			placed++
		}
	}
	if placed != len(correct) {
		return verdict(q, false)
	}
	for anchor, want := range correct {
		w, _ := scalarString(want)
		got, _ := scalarString(placements[anchor])
		if NormalizeText(got) == "" || NormalizeText(got) != NormalizeText(w) {
			return verdict(q, false)
		}
	}
	return verdict(q, true)
}
