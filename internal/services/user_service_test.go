package services

import (
	"fmt"
	"testing"

	"gastobot/internal/testutil"
)

func TestGetOrCreateByPhone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	phone := "56911112222"
	user, err := svc.GetOrCreateByPhone(phone)
	testutil.AssertNoError(t, err)

	if user.Phone != phone {
		t.Errorf("expected phone %s, got %s", phone, user.Phone)
	}
	if user.DefaultCurrency != "CLP" || user.Timezone != "America/Santiago" {
		t.Errorf("expected Chilean defaults, got %s %s", user.DefaultCurrency, user.Timezone)
	}
	if !user.IsActive {
		t.Error("new users should be active")
	}

	again, err := svc.GetOrCreateByPhone(phone)
	testutil.AssertNoError(t, err)
	if again.ID != user.ID {
		t.Error("expected the existing user, not a new row")
	}

	_, err = svc.GetOrCreateByPhone("")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestTouch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	if user.LastSeenAt != nil {
		t.Fatal("fixture user should have no last_seen yet")
	}
	testutil.AssertNoError(t, svc.Touch(user))
	if user.LastSeenAt == nil {
		t.Error("expected last_seen to be set")
	}
}

func TestProfileUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.SetDisplayName(user, "Camila"))
	if user.DisplayName != "Camila" {
		t.Errorf("expected display name Camila, got %s", user.DisplayName)
	}

	err := svc.SetDisplayName(user, "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	testutil.AssertNoError(t, svc.SetCurrency(user, "USD"))
	if user.DefaultCurrency != "USD" {
		t.Errorf("expected USD, got %s", user.DefaultCurrency)
	}

	testutil.AssertNoError(t, svc.SetActive(user, false))
	if user.IsActive {
		t.Error("expected user deactivated")
	}
}

func TestSetBlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	blocked, err := svc.SetBlocked(user.Phone, true)
	testutil.AssertNoError(t, err)
	if !blocked.IsBlocked {
		t.Error("expected user blocked")
	}

	unblocked, err := svc.SetBlocked(user.Phone, false)
	testutil.AssertNoError(t, err)
	if unblocked.IsBlocked {
		t.Error("expected user unblocked")
	}

	_, err = svc.SetBlocked("56900000000", true)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestCountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestUser(t, db)
	}
	blocked := testutil.CreateTestUserWithPhone(t, db, fmt.Sprintf("5698%07d", 1))
	_, err := svc.SetBlocked(blocked.Phone, true)
	testutil.AssertNoError(t, err)

	active, blockedCount, err := svc.CountByStatus()
	testutil.AssertNoError(t, err)
	if active != 4 {
		t.Errorf("expected 4 active users, got %d", active)
	}
	if blockedCount != 1 {
		t.Errorf("expected 1 blocked user, got %d", blockedCount)
	}
}
