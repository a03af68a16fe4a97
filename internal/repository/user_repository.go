package repository

import (
	"github.com/talenthub/abacus-api/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(id uint) (*model.User, error)
	AddPoints(tx *gorm.DB, userID uint, points int) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddPoints credits points atomically inside the caller's transaction so the
// grading write and the points write commit together.
func (r *userRepository) AddPoints(tx *gorm.DB, userID uint, points int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", points)).Error
}
