package grading

import (
	"strconv"

	"github.com/talenthub/abacus-api/internal/generator"
)

// Summary is the graded outcome of one paper attempt. Computed server-side
// once at submission; clients reuse Classify only for review rendering, never
// as authoritative scoring.
type Summary struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	WrongAnswers   int     `json:"wrong_answers"`
	Attempted      int     `json:"attempted"`
	Accuracy       float64 `json:"accuracy"`
	Score          int     `json:"score"`
	PointsEarned   int     `json:"points_earned"`
}

// GradeBlocks walks every question of the compiled paper against the
// submitted answer map (keyed by decimal question id). Unattempted questions
// are counted separately, not as wrong.
func GradeBlocks(blocks []generator.GeneratedBlock, answers map[string]string, tol float64) Summary {
	var s Summary
	for _, gb := range blocks {
		for _, q := range gb.Questions {
			s.TotalQuestions++
			submitted := answers[strconv.Itoa(q.ID)]
			switch Classify(submitted, q.Answer, tol) {
			case Correct:
				s.CorrectAnswers++
			case Wrong:
				s.WrongAnswers++
			}
		}
	}
	s.Attempted = s.CorrectAnswers + s.WrongAnswers
	if s.TotalQuestions > 0 {
		s.Accuracy = float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100
	}
	s.Score = s.CorrectAnswers
	s.PointsEarned = Points(s.CorrectAnswers, s.Attempted)
	return s
}

// Points implements the reward formula: +1 per attempted question, +5 per
// correct answer, never negative.
func Points(correct, attempted int) int {
	total := attempted + correct*5
	if total < 0 {
		return 0
	}
	return total
}
