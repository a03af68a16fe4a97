package model

import (
	"time"

	"gorm.io/gorm"
)

// PaperAttempt is one student's timed session against a compiled paper. The
// config, generated blocks and seed are frozen at creation so the identical
// question set can be re-derived. CompletedAt is the sole source of truth for
// "finished": it is set exactly once by grading and never cleared.
type PaperAttempt struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	UserID          uint                `json:"user_id" gorm:"not null;index:idx_paper_user_created"`
	User            User                `json:"-" gorm:"foreignKey:UserID"`
	PaperTitle      string              `json:"paper_title" gorm:"not null"`
	PaperLevel      string              `json:"paper_level" gorm:"not null"`
	PaperConfig     PaperConfigJSON     `json:"paper_config" gorm:"type:jsonb;not null"`
	GeneratedBlocks GeneratedBlocksJSON `json:"generated_blocks" gorm:"type:jsonb;not null"`
	Seed            int64               `json:"seed" gorm:"not null;index"`
	TotalQuestions  int                 `json:"total_questions" gorm:"not null"`
	CorrectAnswers  int                 `json:"correct_answers" gorm:"default:0;not null"`
	WrongAnswers    int                 `json:"wrong_answers" gorm:"default:0;not null"`
	Accuracy        float64             `json:"accuracy" gorm:"default:0;not null"`
	Score           int                 `json:"score" gorm:"default:0;not null"`
	TimeTaken       *float64            `json:"time_taken,omitempty"` // seconds, nil until completed
	PointsEarned    int                 `json:"points_earned" gorm:"default:0;not null"`
	Answers         AnswersJSON         `json:"answers" gorm:"type:jsonb"`
	StartedAt       time.Time           `json:"started_at" gorm:"autoCreateTime;index:idx_paper_user_created"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`
}
