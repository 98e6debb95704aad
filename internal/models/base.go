package models

import (
	"time"

	"gastobot/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Deletions are hard deletes:
// the undo command really removes the expense row, and category deletion is
// guarded by explicit checks instead of soft-delete flags.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
