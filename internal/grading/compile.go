package grading

import (
	"strconv"
	"strings"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// CompiledQuestion is a question with its encoding and metadata resolved once,
// so a session grades against pre-parsed values.
type CompiledQuestion struct {
	ID             uint
	Type           models.QuestionType
	Section        models.Section
	QuestionNumber *int
	Order          int
	Points         float64
	CorrectAnswer  string

	Meta     Metadata
	Expect   Expectation
	Options  []string // normalized set for choice types
	Accepted []string // punctuation-stripped accepted short answers
	Table    *TableDefinition

	IsAnchor      bool
	GroupMemberOf string
}

// Compile parses a stored question. It never fails: malformed metadata reads
// as empty and the question falls back to hint grading where needed.
func Compile(q *models.Question) *CompiledQuestion {
	c := &CompiledQuestion{
		ID:             q.ID,
		Type:           q.Type,
		Section:        q.Section,
		QuestionNumber: q.QuestionNumber,
		Order:          q.Order,
		Points:         q.Points,
		Meta:           ParseMetadata(q.Metadata),
		Expect:         ParseEncoding(q.CorrectAnswer, 1),
	}
	if q.CorrectAnswer != nil {
		c.CorrectAnswer = *q.CorrectAnswer
	}

	switch q.Type {
	case models.MultipleChoice, models.DragDrop, models.Matching, models.MultiSelect:
		c.Options = optionSet(q.CorrectAnswer)
	case models.ShortAnswer:
		c.Accepted = acceptedAnswers(c.Meta, c.Expect)
	case models.SimpleTable:
		c.Table = parseTable(c.Meta)
	}

	c.IsAnchor = c.Meta.Has("groupRangeEnd")
	c.GroupMemberOf, _ = c.Meta.ID("groupMemberOf")
	return c
}

// CompileAll keeps the input order.
func CompileAll(questions []models.Question) []*CompiledQuestion {
	out := make([]*CompiledQuestion, len(questions))
	for i := range questions {
		out[i] = Compile(&questions[i])
	}
	return out
}

func (c *CompiledQuestion) key() string {
	return strconv.FormatUint(uint64(c.ID), 10)
}

// combinesBlanks reports whether a multi-blank fill-in counts as one unit for display.
func (c *CompiledQuestion) combinesBlanks() bool {
	return c.Meta.Bool("combineBlanks") || c.Meta.Bool("singleNumber") || c.Meta.Bool("conversation")
}

// blankNumber is the question number shown for blank i.
func (c *CompiledQuestion) blankNumber(i int) *int {
	if nums := c.Meta.Ints("multiNumbers"); i < len(nums) {
		n := nums[i]
		return &n
	}
	if c.QuestionNumber != nil {
		n := *c.QuestionNumber + i
		return &n
	}
	return nil
}

func optionSet(raw *string) []string {
	if raw == nil {
		return nil
	}
	exp := parseEncoding(raw)
	var out []string
	for _, g := range exp.Groups {
		for _, v := range g {
			out = appendVariant(out, v)
		}
	}
	return out
}

func acceptedAnswers(meta Metadata, exp Expectation) []string {
	var out []string
	add := func(v string) {
		n := stripPunctuation(v)
		if n == "" {
			return
		}
		for _, e := range out {
			if e == n {
				return
			}
		}
		out = append(out, n)
	}
	for _, v := range meta.Strings("acceptedAnswers") {
		add(v)
	}
	for _, g := range exp.Groups {
		for _, v := range g {
			add(v)
		}
	}
	return out
}

func joinGroup(group []string) string {
	return strings.Join(group, "|")
}
