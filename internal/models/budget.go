package models

// Budget is a monthly spending limit for one user and category. One budget
// per user+category; setting it again replaces the amount.
type Budget struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;uniqueIndex:uq_budget_scope" json:"user_id"`
	CategoryID string  `gorm:"type:uuid;not null;uniqueIndex:uq_budget_scope" json:"category_id"`
	Amount     float64 `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency   string  `gorm:"not null;default:CLP" json:"currency"`
	IsActive   bool    `gorm:"default:true" json:"is_active"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
