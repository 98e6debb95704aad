package services

import (
	"testing"

	"gastobot/internal/testutil"
)

func TestGetOrCreateMany(t *testing.T) {
	t.Run("creates_and_reuses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		first, err := svc.GetOrCreateMany([]string{"Trabajo", "viaje"})
		testutil.AssertNoError(t, err)
		if len(first) != 2 {
			t.Fatalf("expected 2 tags, got %d", len(first))
		}
		if first[0].Name != "trabajo" {
			t.Errorf("expected lowercase name, got %s", first[0].Name)
		}

		second, err := svc.GetOrCreateMany([]string{"TRABAJO"})
		testutil.AssertNoError(t, err)
		if second[0].ID != first[0].ID {
			t.Error("expected case variants to resolve to the same tag")
		}
	})

	t.Run("dedupes_within_message", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		tags, err := svc.GetOrCreateMany([]string{"casa", "Casa", "casa"})
		testutil.AssertNoError(t, err)
		if len(tags) != 1 {
			t.Errorf("expected 1 tag after dedup, got %d", len(tags))
		}
	})

	t.Run("skips_empty_names", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTagService(db)

		tags, err := svc.GetOrCreateMany([]string{"", "  ", "real"})
		testutil.AssertNoError(t, err)
		if len(tags) != 1 || tags[0].Name != "real" {
			t.Errorf("expected only 'real', got %v", tags)
		}
	})
}

func TestCreateTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)

	tag, created, err := svc.Create("@Gimnasio")
	testutil.AssertNoError(t, err)
	if !created {
		t.Error("expected first create to report created=true")
	}
	if tag.Name != "gimnasio" {
		t.Errorf("expected '@' and case stripped, got %s", tag.Name)
	}

	again, created, err := svc.Create("gimnasio")
	testutil.AssertNoError(t, err)
	if created {
		t.Error("expected second create to report created=false")
	}
	if again.ID != tag.ID {
		t.Error("expected the same tag row")
	}

	_, _, err = svc.Create("  ")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTagService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	mine := testutil.CreateTestExpense(t, db, user.ID, 1000)
	theirs := testutil.CreateTestExpense(t, db, other.ID, 2000)

	zebra, _, err := svc.Create("zebra-tag")
	testutil.AssertNoError(t, err)
	alpha, _, err := svc.Create("alpha-tag")
	testutil.AssertNoError(t, err)
	foreign, _, err := svc.Create("ajena-tag")
	testutil.AssertNoError(t, err)

	if err := db.Model(mine).Association("Tags").Append(zebra, alpha); err != nil {
		t.Fatalf("failed to attach tags: %v", err)
	}
	if err := db.Model(theirs).Association("Tags").Append(foreign); err != nil {
		t.Fatalf("failed to attach tags: %v", err)
	}

	tags, err := svc.ListForUser(user.ID)
	testutil.AssertNoError(t, err)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Name != "alpha-tag" || tags[1].Name != "zebra-tag" {
		t.Errorf("expected alphabetical order, got %s then %s", tags[0].Name, tags[1].Name)
	}
}
