package model

import (
	"time"

	"gorm.io/gorm"
)

// Paper is a saved paper configuration. The config stays editable until it is
// attached to an attempt, which freezes its own serialized copy.
type Paper struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Title     string          `json:"title" gorm:"not null"`
	Level     string          `json:"level" gorm:"not null"`
	Config    PaperConfigJSON `json:"config" gorm:"type:jsonb;not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
