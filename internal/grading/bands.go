package grading

import (
	"math"

	"github.com/SAP-F-2025/exam-grading-service/internal/models"
)

const (
	MaxRawScore = 40
	MinBand     = 2.0
	MaxBand     = 9.0
)

type bandStep struct {
	minRaw int
	band   float64
}

var listeningBands = [...]bandStep{
	{39, 9}, {37, 8.5}, {35, 8}, {32, 7.5}, {30, 7}, {26, 6.5}, {23, 6},
	{18, 5.5}, {16, 5}, {13, 4.5}, {10, 4}, {8, 3.5}, {6, 3}, {4, 2.5},
}

var academicReadingBands = [...]bandStep{
	{39, 9}, {37, 8.5}, {35, 8}, {33, 7.5}, {30, 7}, {27, 6.5}, {23, 6},
	{19, 5.5}, {15, 5}, {13, 4.5}, {10, 4}, {8, 3.5}, {6, 3}, {4, 2.5},
}

var generalReadingBands = [...]bandStep{
	{40, 9}, {39, 8.5}, {37, 8}, {36, 7.5}, {34, 7}, {32, 6.5}, {30, 6},
	{27, 5.5}, {23, 5}, {19, 4.5}, {15, 4}, {12, 3.5}, {9, 3}, {6, 2.5},
}

func lookupBand(steps []bandStep, raw int) float64 {
	raw = min(max(raw, 0), MaxRawScore)
	for _, s := range steps {
		if raw >= s.minRaw {
			return s.band
		}
	}
	return MinBand
}

// ListeningBand maps a raw listening score (0-40) to a band.
func ListeningBand(raw int) float64 {
	return lookupBand(listeningBands[:], raw)
}

// ReadingBand maps a raw reading score using the table for the exam type.
// Anything other than general training uses the academic table.
func ReadingBand(raw int, examType models.ExamType) float64 {
	if examType == models.ExamGeneralTraining {
		return lookupBand(generalReadingBands[:], raw)
	}
	return lookupBand(academicReadingBands[:], raw)
}

// WritingBand weights task 2 double: (task1 + 2*task2) / 3, to the nearest half band.
func WritingBand(task1, task2 float64) float64 {
	return RoundToHalf((task1 + 2*task2) / 3)
}

// RoundToHalf rounds to the nearest 0.5; halves round away from zero.
func RoundToHalf(x float64) float64 {
	return math.Round(x*2) / 2
}
