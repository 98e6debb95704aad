package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
)

// budgetService manages per-category monthly budgets and their progress
// against the current month's confirmed spending.
type budgetService struct {
	db       *gorm.DB
	category CategoryServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, category CategoryServicer) BudgetServicer {
	return &budgetService{db: db, category: category}
}

// Set creates or replaces the user's monthly budget for a category. The
// budget currency follows the user's default currency.
func (s *budgetService) Set(user *models.User, categoryIdent string, amount float64) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "El monto del presupuesto debe ser mayor que cero.")
	}
	category, err := s.category.ResolveByIdentifier(categoryIdent)
	if err != nil {
		return nil, err
	}

	currency := user.DefaultCurrency
	if currency == "" {
		currency = "CLP"
	}

	var budget models.Budget
	err = s.db.Where("user_id = ? AND category_id = ?", user.ID, category.ID).First(&budget).Error
	switch {
	case err == nil:
		budget.Amount = amount
		budget.Currency = currency
		budget.IsActive = true
		if err := s.db.Model(&budget).Updates(map[string]interface{}{
			"amount":    amount,
			"currency":  currency,
			"is_active": true,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = models.Budget{
			UserID:     user.ID,
			CategoryID: category.ID,
			Amount:     amount,
			Currency:   currency,
			IsActive:   true,
		}
		if err := s.db.Create(&budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.Category = category
	return &budget, nil
}

// Progress reports, per active budget, how much of the current month's
// allocation has been consumed. Only confirmed expenses in the budget's
// own currency count toward the spent figure.
func (s *budgetService) Progress(userID string, now time.Time) ([]BudgetProgress, error) {
	var budgets []models.Budget
	err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	progress := make([]BudgetProgress, 0, len(budgets))
	for _, budget := range budgets {
		var spent float64
		err := s.db.Model(&models.Expense{}).
			Where("user_id = ? AND category_id = ? AND status = ? AND currency = ?",
				userID, budget.CategoryID, models.ExpenseStatusConfirmed, budget.Currency).
			Where("expense_date >= ? AND expense_date < ?", from, to).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&spent).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		name := ""
		if budget.Category != nil {
			name = budget.Category.Name
		}
		percentage := 0.0
		if budget.Amount > 0 {
			percentage = spent / budget.Amount * 100
		}
		progress = append(progress, BudgetProgress{
			CategoryName: name,
			Budgeted:     budget.Amount,
			Spent:        spent,
			Currency:     budget.Currency,
			Percentage:   percentage,
		})
	}
	return progress, nil
}
