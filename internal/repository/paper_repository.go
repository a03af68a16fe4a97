package repository

import (
	"github.com/talenthub/abacus-api/internal/model"
	"gorm.io/gorm"
)

type PaperRepository interface {
	Create(paper *model.Paper) error
	FindByID(id uint) (*model.Paper, error)
	FindAll() ([]model.Paper, error)
	Delete(id uint) error
}

type paperRepository struct {
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) PaperRepository {
	return &paperRepository{db: db}
}

func (r *paperRepository) Create(paper *model.Paper) error {
	return r.db.Create(paper).Error
}

func (r *paperRepository) FindByID(id uint) (*model.Paper, error) {
	var paper model.Paper
	if err := r.db.First(&paper, id).Error; err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *paperRepository) FindAll() ([]model.Paper, error) {
	var papers []model.Paper
	if err := r.db.Order("created_at desc").Find(&papers).Error; err != nil {
		return nil, err
	}
	return papers, nil
}

func (r *paperRepository) Delete(id uint) error {
	return r.db.Delete(&model.Paper{}, id).Error
}
