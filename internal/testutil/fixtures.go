package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gastobot/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a unique phone number.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	phone := fmt.Sprintf("5699%07d", nextID())
	return CreateTestUserWithPhone(t, db, phone)
}

// CreateTestUserWithPhone creates a user with the given phone number.
func CreateTestUserWithPhone(t *testing.T, db *gorm.DB, phone string) *models.User {
	t.Helper()

	user := &models.User{
		Phone:           phone,
		Locale:          "es-CL",
		Timezone:        "America/Santiago",
		DefaultCurrency: "CLP",
		IsActive:        true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a non-system category with a unique name and code.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("testcat%d", nextID()))
}

// CreateTestCategoryWithName creates a non-system category with the given
// name and a unique short code.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	code := fmt.Sprintf("tc%d", nextID())
	category := &models.Category{
		Name:      name,
		ShortName: &code,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSystemCategory creates a system category with a unique name and code.
func CreateTestSystemCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	n := nextID()
	code := fmt.Sprintf("sys%d", n)
	category := &models.Category{
		Name:      fmt.Sprintf("syscat%d", n),
		ShortName: &code,
		IsSystem:  true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test system category: %v", err)
	}
	return category
}

// CreateTestExpense creates a confirmed expense dated now.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID string, amount float64) *models.Expense {
	t.Helper()
	return CreateTestExpenseAt(t, db, userID, amount, time.Now().UTC())
}

// CreateTestExpenseAt creates a confirmed expense with the given date.
func CreateTestExpenseAt(t *testing.T, db *gorm.DB, userID string, amount float64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		Amount:      amount,
		Currency:    "CLP",
		Description: fmt.Sprintf("test expense %d", nextID()),
		RawText:     fmt.Sprintf("%.0f test", amount),
		ExpenseDate: date,
		Status:      models.ExpenseStatusConfirmed,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestTag creates a tag with a unique name.
func CreateTestTag(t *testing.T, db *gorm.DB) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: fmt.Sprintf("tag%d", nextID())}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateTestMessageLog creates an inbound message log row with a unique
// provider message id.
func CreateTestMessageLog(t *testing.T, db *gorm.DB, status models.MessageStatus) *models.MessageLog {
	t.Helper()

	log := &models.MessageLog{
		Provider:          "meta",
		ProviderMessageID: fmt.Sprintf("wamid.test%d", nextID()),
		ChatID:            "56990000000",
		Direction:         "in",
		Text:              "test message",
		Status:            status,
	}
	if err := db.Create(log).Error; err != nil {
		t.Fatalf("failed to create test message log: %v", err)
	}
	return log
}
