package grading

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// SessionResult is the output of grading one session.
type SessionResult struct {
	// Answers follow exam question order; group members are included.
	Answers []*GradedAnswer
	Score   SessionScore
	// Unknown lists submitted question IDs that are not part of the exam.
	Unknown []uint
}

// Engine grades whole sessions. Questions are graded concurrently; the result
// does not depend on scheduling.
type Engine struct {
	workers int
	logger  *slog.Logger
}

func NewEngine(workers int, logger *slog.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{workers: workers, logger: logger}
}

// GradeSession grades submissions against the exam's questions, resolves
// question groups and aggregates the score. A later submission for the same
// question replaces an earlier one. Members of a group whose anchor is in the
// exam are never graded on their own: they stay ungraded unless the anchor's
// verdict is copied onto them.
func (e *Engine) GradeSession(questions []*CompiledQuestion, subs []Submission, examType models.ExamType) *SessionResult {
	byID := make(map[uint]*CompiledQuestion, len(questions))
	anchors := make(map[string]bool)
	for _, q := range questions {
		byID[q.ID] = q
		if q.IsAnchor {
			anchors[q.key()] = true
		}
	}

	latest := make(map[uint]int, len(subs))
	var unknown []uint
	for i, s := range subs {
		if _, ok := byID[s.QuestionID]; !ok {
			unknown = append(unknown, s.QuestionID)
			continue
		}
		latest[s.QuestionID] = i
	}

	graded := make([]*GradedAnswer, len(subs))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, s := range subs {
		if idx, ok := latest[s.QuestionID]; !ok || idx != i {
			continue
		}
		q := byID[s.QuestionID]
		if q.GroupMemberOf != "" && q.GroupMemberOf != q.key() && anchors[q.GroupMemberOf] {
			graded[i] = ungraded(q)
			continue
		}
		g.Go(func() error {
			res := e.gradeOne(q, s)
			graded[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[uint]*GradedAnswer, len(latest))
	for _, res := range graded {
		if res != nil {
			results[res.QuestionID] = res
		}
	}
	if n := len(ResolveGroups(questions, results)); n > 0 {
		e.logger.Debug("Propagated group verdicts", "members", n)
	}

	out := &SessionResult{
		Score:   Aggregate(questions, results, examType),
		Unknown: unknown,
	}
	for _, q := range questions {
		if res, ok := results[q.ID]; ok {
			out.Answers = append(out.Answers, res)
		}
	}
	return out
}

// ungraded keeps a row for a group member's answer without a verdict.
func ungraded(q *CompiledQuestion) *GradedAnswer {
	return &GradedAnswer{QuestionID: q.ID, Type: q.Type, MaxPoints: q.Points}
}

// gradeOne isolates a single question; a panic becomes an incorrect answer.
func (e *Engine) gradeOne(q *CompiledQuestion, s Submission) (res GradedAnswer) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Question grading panicked", "question_id", q.ID, "type", q.Type, "panic", fmt.Sprint(r))
			res = verdict(q, false)
			res.QuestionID = q.ID
			res.Type = q.Type
		}
	}()
	res = Grade(q, s)
	if res.Fallback {
		e.logger.Warn("Question has no usable answer key, using client verdict",
			"question_id", q.ID, "type", q.Type, "encoding", q.Expect.Kind.String())
	}
	return res
}
