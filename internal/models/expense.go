package models

import "time"

// ExpenseStatus represents the confirmation state of an expense
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "draft"
	ExpenseStatusConfirmed ExpenseStatus = "confirmed"
	ExpenseStatusRejected  ExpenseStatus = "rejected"
)

// Expense is a ledger entry parsed from a chat message. It is created in
// draft status and flipped to confirmed/rejected by an interactive reply.
type Expense struct {
	Base
	UserID      string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      float64       `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency    string        `gorm:"not null;default:CLP" json:"currency"`
	CategoryID  *string       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Description string        `json:"description"`
	RawText     string        `gorm:"not null" json:"raw_text"`
	ExpenseDate time.Time     `gorm:"not null;index" json:"expense_date"`
	Status      ExpenseStatus `gorm:"not null;default:draft" json:"status"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []Tag     `gorm:"many2many:expense_tags;" json:"tags,omitempty"`
}
