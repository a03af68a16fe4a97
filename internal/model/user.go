package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	GoogleID    string         `json:"google_id" gorm:"uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Role        string         `json:"role" gorm:"default:'student';not null"` // "student" or "admin"
	TotalPoints int            `json:"total_points" gorm:"default:0;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
