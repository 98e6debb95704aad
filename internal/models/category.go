package models

// Category is a node in the shared expense taxonomy. The parent reference is
// a weak back-link; the parent graph must stay acyclic, which the category
// service enforces with an ancestor walk on every re-parent.
type Category struct {
	Base
	Name      string  `gorm:"not null" json:"name"`
	ShortName *string `gorm:"uniqueIndex" json:"short_name,omitempty"`
	Emoji     *string `json:"emoji,omitempty"`
	ParentID  *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	IsSystem  bool    `gorm:"default:false" json:"is_system"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Expenses []Expense  `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}
