package repository

import (
	"time"

	"github.com/talenthub/abacus-api/internal/model"
	"gorm.io/gorm"
)

type PaperAttemptRepository interface {
	Create(attempt *model.PaperAttempt) error
	Update(attempt *model.PaperAttempt) error
	FindByIDAndUser(id, userID uint) (*model.PaperAttempt, error)
	FindAllByUser(userID uint, limit int) ([]model.PaperAttempt, error)
	CountBySeedAndTitle(userID uint, seed int64, paperTitle string) (int64, error)
	FindStaleIncomplete(startedBefore time.Time, userID *uint) ([]model.PaperAttempt, error)
	FinalizeWithCredit(attempt *model.PaperAttempt, credit func(tx *gorm.DB) error) (bool, error)
}

type paperAttemptRepository struct {
	db *gorm.DB
}

func NewPaperAttemptRepository(db *gorm.DB) PaperAttemptRepository {
	return &paperAttemptRepository{db: db}
}

func (r *paperAttemptRepository) Create(attempt *model.PaperAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *paperAttemptRepository) Update(attempt *model.PaperAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *paperAttemptRepository) FindByIDAndUser(id, userID uint) (*model.PaperAttempt, error) {
	var attempt model.PaperAttempt
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *paperAttemptRepository) FindAllByUser(userID uint, limit int) ([]model.PaperAttempt, error) {
	var attempts []model.PaperAttempt
	err := r.db.Where("user_id = ?", userID).
		Order("started_at desc").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// CountBySeedAndTitle counts prior attempts of the same compiled paper; the
// seed plus title identifies one paper across fresh attempt and re-attempt.
func (r *paperAttemptRepository) CountBySeedAndTitle(userID uint, seed int64, paperTitle string) (int64, error) {
	var count int64
	err := r.db.Model(&model.PaperAttempt{}).
		Where("user_id = ? AND seed = ? AND paper_title = ?", userID, seed, paperTitle).
		Count(&count).Error
	return count, err
}

// FinalizeWithCredit writes the graded fields and runs the points credit in
// one transaction. The update carries a completed_at IS NULL predicate, so of
// two concurrent submits exactly one finalizes the row; the loser gets false
// back and nothing written, credit included.
func (r *paperAttemptRepository) FinalizeWithCredit(attempt *model.PaperAttempt, credit func(tx *gorm.DB) error) (bool, error) {
	won := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PaperAttempt{}).
			Where("id = ? AND completed_at IS NULL", attempt.ID).
			Updates(map[string]interface{}{
				"answers":         attempt.Answers,
				"correct_answers": attempt.CorrectAnswers,
				"wrong_answers":   attempt.WrongAnswers,
				"accuracy":        attempt.Accuracy,
				"score":           attempt.Score,
				"time_taken":      attempt.TimeTaken,
				"points_earned":   attempt.PointsEarned,
				"completed_at":    attempt.CompletedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true
		return credit(tx)
	})
	return won, err
}

func (r *paperAttemptRepository) FindStaleIncomplete(startedBefore time.Time, userID *uint) ([]model.PaperAttempt, error) {
	query := r.db.Where("completed_at IS NULL AND started_at < ?", startedBefore)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var attempts []model.PaperAttempt
	err := query.Find(&attempts).Error
	return attempts, err
}
