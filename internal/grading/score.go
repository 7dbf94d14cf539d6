package grading

import (
	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

// SessionScore is the aggregate of a graded session.
type SessionScore struct {
	TotalScore       float64  `json:"total_score"`
	MaxPossibleScore float64  `json:"max_possible_score"`
	Percentage       float64  `json:"percentage_score"`
	ListeningRaw     int      `json:"listening_raw"`
	ReadingRaw       int      `json:"reading_raw"`
	ListeningBand    *float64 `json:"listening_band,omitempty"`
	ReadingBand      *float64 `json:"reading_band,omitempty"`
	WritingBand      *float64 `json:"writing_band,omitempty"`
	PendingManual    bool     `json:"pending_manual"`
}

// Aggregate totals points across the exam and derives raw counts and bands.
// Max points cover every non-container question, answered or not.
func Aggregate(questions []*CompiledQuestion, results map[uint]*GradedAnswer, examType models.ExamType) SessionScore {
	var (
		score                    SessionScore
		task1, task2             float64
		hasWriting               bool
		hasListening, hasReading bool
	)

	for _, q := range questions {
		if q.Type.IsContainer() {
			continue
		}
		res := results[q.ID]

		switch {
		case q.Type != models.SimpleTable:
			score.MaxPossibleScore += q.Points
		case res != nil && res.Cells != nil:
			score.MaxPossibleScore += res.MaxPoints
		default:
			score.MaxPossibleScore += tableMaxPoints(q)
		}

		if !q.Type.IsManual() {
			switch q.Section {
			case models.SectionListening:
				hasListening = true
			case models.SectionReading:
				hasReading = true
			}
		}

		if res == nil {
			continue
		}
		score.TotalScore += res.PointsEarned

		switch q.Section {
		case models.SectionListening:
			score.ListeningRaw += correctUnits(res)
		case models.SectionReading:
			score.ReadingRaw += correctUnits(res)
		}

		if res.Manual && res.Pending {
			score.PendingManual = true
		}
		switch q.Type {
		case models.WritingTask1:
			hasWriting = true
			task1 += res.PointsEarned
		case models.Essay:
			hasWriting = true
			task2 += res.PointsEarned
		}
	}

	score.ListeningRaw = min(score.ListeningRaw, MaxRawScore)
	score.ReadingRaw = min(score.ReadingRaw, MaxRawScore)
	if hasListening {
		band := ListeningBand(score.ListeningRaw)
		score.ListeningBand = &band
	}
	if hasReading {
		band := ReadingBand(score.ReadingRaw, examType)
		score.ReadingBand = &band
	}

	if hasWriting {
		band := WritingBand(task1, task2)
		score.WritingBand = &band
		score.TotalScore = band
		score.MaxPossibleScore = MaxBand
	}

	if score.MaxPossibleScore > 0 {
		score.Percentage = score.TotalScore / score.MaxPossibleScore * 100
	}
	return score
}

// correctUnits counts one per correct answer, or one per correct leaf for tables.
func correctUnits(res *GradedAnswer) int {
	if res.Cells != nil {
		n := 0
		for _, c := range res.Cells {
			if c.IsCorrect {
				n++
			}
		}
		return n
	}
	if res.IsCorrect != nil && *res.IsCorrect {
		return 1
	}
	return 0
}

// tableMaxPoints is the worth of an unanswered table. A table without
// question cells is worth its own points.
func tableMaxPoints(q *CompiledQuestion) float64 {
	if q.Table == nil || len(q.Table.Cells) == 0 {
		return q.Points
	}
	return q.Table.MaxPoints()
}
