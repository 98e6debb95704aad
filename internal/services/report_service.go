package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
)

// UncategorizedLabel groups expenses without a category in breakdowns.
const UncategorizedLabel = "Sin categoría"

// searchResultLimit caps how many matches a search reply carries.
const searchResultLimit = 10

// reportService aggregates confirmed expenses over time windows. Drafts
// and rejected expenses never count toward totals.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// ListByMonth lists confirmed expenses for one month, newest first. A nil
// month widens the window to the whole year.
func (s *reportService) ListByMonth(userID string, month *int, year int) (*ExpenseList, error) {
	var from, to time.Time
	if month != nil {
		if *month < 1 || *month > 12 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "El mes debe estar entre 1 y 12.")
		}
		from = time.Date(year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	} else {
		from = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	}

	expenses, err := s.window(userID, from, to)
	if err != nil {
		return nil, err
	}
	return &ExpenseList{Expenses: expenses, Totals: sumByCurrency(expenses)}, nil
}

// ListByTags lists confirmed expenses carrying any of the given tags,
// newest first.
func (s *reportService) ListByTags(userID string, tags []string) (*ExpenseList, error) {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Debes indicar al menos una etiqueta.")
	}

	var expenses []models.Expense
	err := s.db.Preload("Category").Preload("Tags").
		Distinct("expenses.*").
		Joins("JOIN expense_tags ON expense_tags.expense_id = expenses.id").
		Joins("JOIN tags ON tags.id = expense_tags.tag_id").
		Where("expenses.user_id = ? AND expenses.status = ?", userID, models.ExpenseStatusConfirmed).
		Where("tags.name IN ?", normalized).
		Order("expenses.expense_date DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ExpenseList{Expenses: expenses, Totals: sumByCurrency(expenses)}, nil
}

// Daily summarizes the calendar day containing now.
func (s *reportService) Daily(userID string, now time.Time) (*SummaryReport, error) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.summarize(userID, from, from.AddDate(0, 0, 1), 1)
}

// Weekly summarizes the Monday-start week containing now.
func (s *reportService) Weekly(userID string, now time.Time) (*SummaryReport, error) {
	offset := (int(now.Weekday()) + 6) % 7
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)
	return s.summarize(userID, from, from.AddDate(0, 0, 7), 7)
}

// Monthly summarizes one calendar month.
func (s *reportService) Monthly(userID string, month, year int) (*SummaryReport, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "El mes debe estar entre 1 y 12.")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.summarize(userID, from, to, int(to.Sub(from).Hours()/24))
}

// Search matches confirmed expenses against description, category name,
// and (for numeric terms) the exact amount. Results come newest first,
// capped at searchResultLimit.
func (s *reportService) Search(userID, term string) (*ExpenseList, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < 2 {
		return nil, apperrors.ErrSearchTermLength
	}

	pattern := "%" + strings.ToLower(term) + "%"
	query := s.db.Preload("Category").Preload("Tags").
		Distinct("expenses.*").
		Joins("LEFT JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.status = ?", userID, models.ExpenseStatusConfirmed)

	if amount, err := strconv.ParseFloat(strings.ReplaceAll(term, ",", "."), 64); err == nil {
		query = query.Where(
			"LOWER(expenses.description) LIKE ? OR LOWER(categories.name) LIKE ? OR expenses.amount = ?",
			pattern, pattern, amount,
		)
	} else {
		query = query.Where(
			"LOWER(expenses.description) LIKE ? OR LOWER(categories.name) LIKE ?",
			pattern, pattern,
		)
	}

	var expenses []models.Expense
	if err := query.Order("expenses.expense_date DESC").Limit(searchResultLimit).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &ExpenseList{Expenses: expenses, Totals: sumByCurrency(expenses)}, nil
}

// window fetches confirmed expenses within [from, to), newest first.
func (s *reportService) window(userID string, from, to time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.Preload("Category").Preload("Tags").
		Where("user_id = ? AND status = ?", userID, models.ExpenseStatusConfirmed).
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Order("expense_date DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

func (s *reportService) summarize(userID string, from, to time.Time, days int) (*SummaryReport, error) {
	expenses, err := s.window(userID, from, to)
	if err != nil {
		return nil, err
	}

	totals := sumByCurrency(expenses)
	average := make(map[string]float64, len(totals))
	if days > 0 {
		for currency, total := range totals {
			average[currency] = total / float64(days)
		}
	}

	byCategory := groupByCategory(expenses)
	top := ""
	if len(byCategory) > 0 {
		top = byCategory[0].Name
	}

	return &SummaryReport{
		From:         from,
		To:           to,
		Expenses:     expenses,
		Totals:       totals,
		Count:        len(expenses),
		DailyAverage: average,
		ByCategory:   byCategory,
		TopCategory:  top,
	}, nil
}

func sumByCurrency(expenses []models.Expense) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range expenses {
		totals[e.Currency] += e.Amount
	}
	return totals
}

// groupByCategory builds the per-category breakdown, largest combined
// amount first. Currencies are never merged inside a slice, only the
// ordering key adds them together.
func groupByCategory(expenses []models.Expense) []CategoryAmount {
	index := make(map[string]*CategoryAmount)
	order := make([]string, 0)
	for _, e := range expenses {
		name := UncategorizedLabel
		if e.Category != nil {
			name = e.Category.Name
		}
		entry, ok := index[name]
		if !ok {
			entry = &CategoryAmount{Name: name, Totals: make(map[string]float64)}
			index[name] = entry
			order = append(order, name)
		}
		entry.Totals[e.Currency] += e.Amount
		entry.Count++
	}

	result := make([]CategoryAmount, 0, len(index))
	for _, name := range order {
		result = append(result, *index[name])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return combinedTotal(result[i].Totals) > combinedTotal(result[j].Totals)
	})
	return result
}

func combinedTotal(totals map[string]float64) float64 {
	var sum float64
	for _, v := range totals {
		sum += v
	}
	return sum
}
