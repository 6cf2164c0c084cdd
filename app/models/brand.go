package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand is a network-cafe brand listing managed through the admin area.
type Brand struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UUID            string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Name            string         `gorm:"type:varchar(100);index" json:"name" validate:"required,min=2,max=100"`
	Description     string         `gorm:"type:varchar(500)" json:"description" validate:"max=500"`
	LogoURL         string         `gorm:"type:varchar(255)" json:"logo_url" validate:"omitempty,url,max=255"`
	Website         string         `gorm:"type:varchar(255)" json:"website" validate:"omitempty,url,max=255"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedByUserID uint           `gorm:"index" json:"created_by_user_id"`
	UpdatedByUserID uint           `json:"updated_by_user_id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Brand) Validate() error {
	v := validator.New()

	return v.Struct(b)
}

// BeforeCreate assigns the public identifier.
func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == "" {
		b.UUID = uuid.New().String()
	}
	return nil
}
