package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
	"gastobot/internal/parse"
)

// Interactive reply ids are "<verb>_<expense id>". UUIDs never contain an
// underscore, so splitting on the first one is safe.
const (
	ActionConfirm = "confirm"
	ActionDecline = "decline"
)

// expenseService turns parsed drafts into ledger rows and drives the
// draft -> confirmed/rejected state machine.
type expenseService struct {
	db       *gorm.DB
	category CategoryServicer
	tags     TagServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, category CategoryServicer, tags TagServicer) ExpenseServicer {
	return &expenseService{db: db, category: category, tags: tags}
}

// CreateFromText parses rawText and stores the result as a draft expense.
// A decimal amount is USD; a plain integer keeps the user's default
// currency. An unresolvable category reference leaves the expense
// uncategorized rather than failing.
func (s *expenseService) CreateFromText(user *models.User, rawText string, now time.Time) (*models.Expense, error) {
	draft, err := parse.Message(rawText, now)
	if err != nil {
		return nil, err
	}

	currency := user.DefaultCurrency
	if currency == "" {
		currency = "CLP"
	}
	if draft.Decimal {
		currency = "USD"
	}

	var categoryID *string
	var category *models.Category
	if draft.CategoryRef != "" {
		if resolved, err := s.category.ResolveByIdentifier(draft.CategoryRef); err == nil {
			category = resolved
			categoryID = &resolved.ID
		}
	}

	tags, err := s.tags.GetOrCreateMany(draft.Tags)
	if err != nil {
		return nil, err
	}

	expenseDate := draft.Date
	if expenseDate.IsZero() {
		expenseDate = now
	}

	expense := &models.Expense{
		UserID:      user.ID,
		Amount:      draft.Amount,
		Currency:    currency,
		CategoryID:  categoryID,
		Description: draft.Description,
		RawText:     rawText,
		ExpenseDate: expenseDate,
		Status:      models.ExpenseStatusDraft,
		Tags:        tags,
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.Category = category
	return expense, nil
}

// HandleAction applies an interactive reply to the referenced expense.
// Re-applying the same action is idempotent; the verb ("confirmado" /
// "rechazado") feeds the reply text.
func (s *expenseService) HandleAction(user *models.User, actionID string) (*models.Expense, string, error) {
	verb, expenseID, found := strings.Cut(actionID, "_")
	if !found {
		return nil, "", apperrors.ErrUnknownAction
	}

	var status models.ExpenseStatus
	var label string
	switch verb {
	case ActionConfirm:
		status, label = models.ExpenseStatusConfirmed, "confirmado"
	case ActionDecline:
		status, label = models.ExpenseStatusRejected, "rechazado"
	default:
		return nil, "", apperrors.ErrUnknownAction
	}

	var expense models.Expense
	err := s.db.Preload("Category").Preload("Tags").
		Where("id = ? AND user_id = ?", expenseID, user.ID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrExpenseNotFound
		}
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if expense.Status != status {
		if err := s.db.Model(&expense).Update("status", status).Error; err != nil {
			return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		expense.Status = status
	}
	return &expense, label, nil
}

// DeleteLast removes the user's most recently recorded expense, whatever
// its status. Returns (nil, nil) when the ledger is empty.
func (s *expenseService) DeleteLast(user *models.User) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.Preload("Category").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&expense).Association("Tags").Clear(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}
