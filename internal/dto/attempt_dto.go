package dto

import (
	"time"

	"github.com/talenthub/abacus-api/internal/generator"
)

// AttemptCreateDTO starts a new attempt from a previously compiled paper.
// The triple (config, blocks, seed) is frozen on the attempt record.
type AttemptCreateDTO struct {
	PaperTitle      string                     `json:"paper_title" binding:"required"`
	PaperLevel      string                     `json:"paper_level" binding:"required"`
	PaperConfig     generator.PaperConfig      `json:"paper_config" binding:"required"`
	GeneratedBlocks []generator.GeneratedBlock `json:"generated_blocks" binding:"required"`
	Seed            int64                      `json:"seed" binding:"required"`
	Answers         map[string]string          `json:"answers"`
}

// AttemptSubmitDTO carries the accumulated answers and the client-measured
// duration. TimeTaken comes from the client's own started_at baseline.
type AttemptSubmitDTO struct {
	Answers   map[string]string `json:"answers" binding:"required"`
	TimeTaken float64           `json:"time_taken" binding:"gte=0"`
}

// AttemptResponseDTO is the summary view of an attempt.
type AttemptResponseDTO struct {
	ID             uint       `json:"id"`
	UserID         uint       `json:"user_id"`
	PaperTitle     string     `json:"paper_title"`
	PaperLevel     string     `json:"paper_level"`
	Seed           int64      `json:"seed"`
	TotalQuestions int        `json:"total_questions"`
	CorrectAnswers int        `json:"correct_answers"`
	WrongAnswers   int        `json:"wrong_answers"`
	Accuracy       float64    `json:"accuracy"`
	Score          int        `json:"score"`
	TimeTaken      *float64   `json:"time_taken,omitempty"`
	PointsEarned   int        `json:"points_earned"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// AttemptDetailResponseDTO adds the frozen paper payload and the answers for
// review rendering.
type AttemptDetailResponseDTO struct {
	AttemptResponseDTO
	PaperConfig     generator.PaperConfig      `json:"paper_config"`
	GeneratedBlocks []generator.GeneratedBlock `json:"generated_blocks"`
	Answers         map[string]string          `json:"answers"`
}

// AttemptValidityDTO is the recovery liveness probe result.
type AttemptValidityDTO struct {
	Valid     bool       `json:"valid"`
	Reason    string     `json:"reason,omitempty"` // not_found | completed | expired
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AttemptCountDTO reports how many attempts exist for one compiled paper.
type AttemptCountDTO struct {
	Count        int64 `json:"count"`
	CanReattempt bool  `json:"can_reattempt"`
	MaxAttempts  int   `json:"max_attempts"`
}
