package grading

import (
	"strings"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// gradeChoice covers multiple choice, multi-select, drag-drop and matching:
// the submitted set must equal the expected set, order-insensitive.
func gradeChoice(q *CompiledQuestion, sub Submission) GradedAnswer {
	if len(q.Options) == 0 {
		return fallback(q, sub)
	}
	var student []string
	for _, s := range submittedStrings(sub.Value) {
		for _, part := range strings.Split(s, "|") {
			student = appendVariant(student, part)
		}
	}
	if len(student) == 0 {
		return verdict(q, false)
	}

	ok := sameSet(student, q.Options)
	if !ok && q.Type == models.Matching {
		ok = matchHeading(q, student)
	}
	return verdict(q, ok)
}

// choiceSet splits a "|"-joined answer into normalized options.
func choiceSet(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		out = appendVariant(out, part)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}

// matchHeading resolves a positional letter ("c" = third option) through
// metadata.headingBank.options and compares the option's labels with the key.
func matchHeading(q *CompiledQuestion, student []string) bool {
	if len(student) != 1 || len(q.Options) != 1 {
		return false
	}
	letter := student[0]
	if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
		return false
	}
	options := q.Meta.Map("headingBank").List("options")
	idx := int(letter[0] - 'a')
	if idx >= len(options) {
		return false
	}
	for _, label := range headingLabels(options[idx]) {
		if NormalizeText(label) == q.Options[0] {
			return true
		}
	}
	return false
}

var headingKeys = []string{"value", "id", "letter", "label", "key", "numeral", "text"}

func headingLabels(opt any) []string {
	switch t := opt.(type) {
	case string:
		labels := []string{t}
		if lead := strings.FieldsFunc(t, func(r rune) bool {
			return r == ' ' || r == '.' || r == ')' || r == ':'
		}); len(lead) > 0 {
			labels = append(labels, lead[0])
		}
		return labels
	case map[string]any:
		var labels []string
		for _, k := range headingKeys {
			if s, ok := scalarString(t[k]); ok && s != "" {
				labels = append(labels, s)
			}
		}
		return labels
	}
	return nil
}

var trueFalseSynonyms = map[string]string{
	"t":        "true",
	"f":        "false",
	"ng":       "not given",
	"notgiven": "not given",
}

func canonicalTrueFalse(s string) string {
	n := NormalizeText(strings.NewReplacer("_", " ", "-", " ").Replace(s))
	if v, ok := trueFalseSynonyms[n]; ok {
		return v
	}
	return n
}

func gradeTrueFalse(q *CompiledQuestion, sub Submission) GradedAnswer {
	expected := q.Expect.Group(0)
	if len(expected) == 0 {
		return fallback(q, sub)
	}
	values := submittedStrings(sub.Value)
	if len(values) != 1 {
		return verdict(q, false)
	}
	return verdict(q, trueFalseMatch(expected, values[0]))
}

func trueFalseMatch(expected []string, submitted string) bool {
	got := canonicalTrueFalse(submitted)
	if got == "" {
		return false
	}
	for _, v := range expected {
		if canonicalTrueFalse(v) == got {
			return true
		}
	}
	return false
}
