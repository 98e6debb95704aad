package models

// Tag is a free label attached to expenses. Names are normalized to
// lowercase at the service boundary and never deleted by the engine.
type Tag struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	Expenses []Expense `gorm:"many2many:expense_tags;" json:"expenses,omitempty"`
}
