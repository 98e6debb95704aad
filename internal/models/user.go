package models

import "time"

// User represents a chat user identified by phone number. Users are created
// on their first inbound message and never hard-deleted by the engine.
type User struct {
	Base
	Phone           string     `gorm:"uniqueIndex;not null" json:"phone"`
	DisplayName     string     `json:"display_name"`
	Locale          string     `gorm:"default:es-CL" json:"locale"`
	Timezone        string     `gorm:"default:America/Santiago" json:"timezone"`
	DefaultCurrency string     `gorm:"default:CLP" json:"default_currency"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	IsBlocked       bool       `gorm:"default:false" json:"is_blocked"`
	IsAdmin         bool       `gorm:"default:false" json:"is_admin"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`

	Expenses []Expense `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Budgets  []Budget  `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}
