package models

import (
	"time"

	"gorm.io/gorm"
)

// contextUserIDKey hook'ların işlemi yapan kullanıcıyı context'ten okuması için.
const contextUserIDKey = "user_id"

// BaseModel tüm tablolara gömülen ortak alanlar: ID, zaman damgaları ve audit sütunları.
type BaseModel struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedBy *uint          `json:"-"`
	UpdatedBy *uint          `json:"-"`
	DeletedBy *uint          `json:"-"`
}

// BeforeCreate context'te userID varsa CreatedBy alanını doldurur.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if userID, ok := tx.Statement.Context.Value(contextUserIDKey).(uint); ok && userID != 0 {
		m.CreatedBy = &userID
	}
	return nil
}

// BeforeUpdate context'te userID varsa UpdatedBy alanını doldurur.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if userID, ok := tx.Statement.Context.Value(contextUserIDKey).(uint); ok && userID != 0 {
		m.UpdatedBy = &userID
	}
	return nil
}
