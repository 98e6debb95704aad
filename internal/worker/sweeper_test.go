package worker

import (
	"testing"
	"time"

	"gastobot/internal/models"
	"gastobot/internal/testutil"
)

func TestSweepOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	now := time.Now().UTC()

	stale := testutil.CreateTestExpense(t, db, user.ID, 5000)
	if err := db.Model(stale).Updates(map[string]interface{}{
		"status":     models.ExpenseStatusDraft,
		"created_at": now.Add(-72 * time.Hour),
	}).Error; err != nil {
		t.Fatalf("failed to age draft: %v", err)
	}

	fresh := testutil.CreateTestExpense(t, db, user.ID, 6000)
	if err := db.Model(fresh).Update("status", models.ExpenseStatusDraft).Error; err != nil {
		t.Fatalf("failed to downgrade expense: %v", err)
	}

	confirmed := testutil.CreateTestExpense(t, db, user.ID, 7000)
	if err := db.Model(confirmed).Update("created_at", now.Add(-72*time.Hour)).Error; err != nil {
		t.Fatalf("failed to age confirmed expense: %v", err)
	}

	sweeper := NewSweeper(db, 48*time.Hour)
	swept := sweeper.SweepOnce(now)
	if swept != 1 {
		t.Fatalf("expected 1 draft swept, got %d", swept)
	}

	var check models.Expense
	if err := db.First(&check, "id = ?", stale.ID).Error; err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if check.Status != models.ExpenseStatusRejected {
		t.Errorf("expected stale draft rejected, got %s", check.Status)
	}

	check = models.Expense{}
	if err := db.First(&check, "id = ?", fresh.ID).Error; err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if check.Status != models.ExpenseStatusDraft {
		t.Errorf("recent drafts must survive the sweep, got %s", check.Status)
	}

	check = models.Expense{}
	if err := db.First(&check, "id = ?", confirmed.ID).Error; err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if check.Status != models.ExpenseStatusConfirmed {
		t.Errorf("confirmed expenses must survive the sweep, got %s", check.Status)
	}
}
