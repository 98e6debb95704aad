package services

import (
	"time"

	"gastobot/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	GetOrCreateByPhone(phone string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	Touch(user *models.User) error
	SetDisplayName(user *models.User, name string) error
	SetCurrency(user *models.User, code string) error
	SetActive(user *models.User, active bool) error
	SetBlocked(phone string, blocked bool) (*models.User, error)
	CountByStatus() (active int64, blocked int64, err error)
}

// CategoryCreate holds the fields for creating a category.
type CategoryCreate struct {
	Name        string
	Code        *string
	Emoji       *string
	ParentIdent *string
}

// CategoryUpdate holds the requested changes for a category update. Nil
// pointers leave the field untouched; the Clear flags reset optional fields.
type CategoryUpdate struct {
	Name        *string
	Code        *string
	ClearCode   bool
	Emoji       *string
	ClearEmoji  bool
	ParentIdent *string
	ClearParent bool
}

// CategoryInfo is the detail view of one category.
type CategoryInfo struct {
	Category     *models.Category
	ParentName   string
	ExpenseCount int64
}

// CategoryServicer defines the contract for the category hierarchy.
type CategoryServicer interface {
	List() ([]models.Category, error)
	ResolveByIdentifier(ident string) (*models.Category, error)
	Create(params CategoryCreate) (*models.Category, error)
	Update(ident string, changes CategoryUpdate) (*models.Category, []string, error)
	Delete(ident string) (*models.Category, error)
	Info(ident string) (*CategoryInfo, error)
}

// TagServicer defines the contract for the tag store.
type TagServicer interface {
	GetOrCreateMany(names []string) ([]models.Tag, error)
	List() ([]models.Tag, error)
	ListForUser(userID string) ([]models.Tag, error)
	Create(name string) (*models.Tag, bool, error)
}

// ExpenseServicer defines the contract for the expense ledger.
type ExpenseServicer interface {
	CreateFromText(user *models.User, rawText string, now time.Time) (*models.Expense, error)
	HandleAction(user *models.User, actionID string) (*models.Expense, string, error)
	DeleteLast(user *models.User) (*models.Expense, error)
}

// ExpenseList is a filtered listing with per-currency totals.
type ExpenseList struct {
	Expenses []models.Expense
	Totals   map[string]float64
}

// CategoryAmount is the per-category slice of a summary breakdown.
type CategoryAmount struct {
	Name   string
	Totals map[string]float64
	Count  int
}

// SummaryReport aggregates one time window of a user's expenses.
type SummaryReport struct {
	From         time.Time
	To           time.Time
	Expenses     []models.Expense
	Totals       map[string]float64
	Count        int
	DailyAverage map[string]float64
	ByCategory   []CategoryAmount
	TopCategory  string
}

// ReportServicer defines the contract for reporting and aggregation.
type ReportServicer interface {
	ListByMonth(userID string, month *int, year int) (*ExpenseList, error)
	ListByTags(userID string, tags []string) (*ExpenseList, error)
	Daily(userID string, now time.Time) (*SummaryReport, error)
	Weekly(userID string, now time.Time) (*SummaryReport, error)
	Monthly(userID string, month, year int) (*SummaryReport, error)
	Search(userID, term string) (*ExpenseList, error)
}

// BudgetProgress is spending vs budget for one category's current month.
type BudgetProgress struct {
	CategoryName string
	Budgeted     float64
	Spent        float64
	Currency     string
	Percentage   float64
}

// BudgetServicer defines the contract for monthly category budgets.
type BudgetServicer interface {
	Set(user *models.User, categoryIdent string, amount float64) (*models.Budget, error)
	Progress(userID string, now time.Time) ([]BudgetProgress, error)
}
