package grading

import (
	"testing"

	"github.com/talenthub/abacus-api/internal/generator"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		answer    string
		want      Verdict
	}{
		{"exact integer match", "42", "42", Correct},
		{"integer mismatch", "43", "42", Wrong},
		{"decimal within tolerance", "42.49", "42.5", Correct},
		{"decimal outside tolerance", "42.47", "42.5", Wrong},
		{"large integer compared as string", "10000000000", "10000000000", Correct},
		{"large integer off by one", "10000000001", "10000000000", Wrong},
		{"huge integer beyond float precision", "12345678901234567", "12345678901234567", Correct},
		{"exponential form goes numeric", "1e2", "100.0", Correct},
		{"whitespace trimmed", " 42 ", "42", Correct},
		{"blank is unattempted", "", "42", Unattempted},
		{"whitespace only is unattempted", "   ", "42", Unattempted},
		{"unparsable decimal is wrong", "4.2.1", "42.5", Wrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.submitted, tt.answer, DefaultTolerance); got != tt.want {
				t.Errorf("Classify(%q, %q) = %s, want %s", tt.submitted, tt.answer, got, tt.want)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		correct, attempted, want int
	}{
		{0, 0, 0},
		{0, 10, 10},
		{10, 10, 60},
		{3, 7, 22},
	}
	for _, tt := range tests {
		if got := Points(tt.correct, tt.attempted); got != tt.want {
			t.Errorf("Points(%d, %d) = %d, want %d", tt.correct, tt.attempted, got, tt.want)
		}
	}
}

func TestGradeBlocks(t *testing.T) {
	blocks := []generator.GeneratedBlock{
		{
			Questions: []generator.Question{
				{ID: 1, Answer: "10"},
				{ID: 2, Answer: "20"},
				{ID: 3, Answer: "30"},
				{ID: 4, Answer: "40"},
			},
		},
	}
	answers := map[string]string{
		"1": "10", // correct
		"2": "21", // wrong
		"3": "",   // unattempted
		// 4 missing entirely: unattempted
	}

	s := GradeBlocks(blocks, answers, DefaultTolerance)
	if s.TotalQuestions != 4 {
		t.Errorf("TotalQuestions = %d, want 4", s.TotalQuestions)
	}
	if s.CorrectAnswers != 1 || s.WrongAnswers != 1 || s.Attempted != 2 {
		t.Errorf("correct/wrong/attempted = %d/%d/%d, want 1/1/2", s.CorrectAnswers, s.WrongAnswers, s.Attempted)
	}
	if s.Accuracy != 25 {
		t.Errorf("Accuracy = %v, want 25", s.Accuracy)
	}
	if s.Score != 1 {
		t.Errorf("Score = %d, want 1", s.Score)
	}
	if s.PointsEarned != Points(1, 2) {
		t.Errorf("PointsEarned = %d, want %d", s.PointsEarned, Points(1, 2))
	}
}
