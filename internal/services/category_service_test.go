package services

import (
	"strings"
	"testing"

	"gastobot/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateCategory(t *testing.T) {
	t.Run("valid_with_generated_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{Name: "Mascotas"})
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected non-empty category ID")
		}
		if cat.Name != "Mascotas" {
			t.Errorf("expected name Mascotas, got %s", cat.Name)
		}
		if cat.ShortName == nil || *cat.ShortName != "mascot" {
			t.Errorf("expected generated code 'mascot', got %v", cat.ShortName)
		}
		if cat.IsSystem {
			t.Error("created categories must not be system categories")
		}
	})

	t.Run("explicit_code_and_emoji", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{
			Name:  "Suscripciones",
			Code:  strPtr("SUBS"),
			Emoji: strPtr("📺"),
		})
		testutil.AssertNoError(t, err)

		if cat.ShortName == nil || *cat.ShortName != "subs" {
			t.Errorf("expected code normalized to 'subs', got %v", cat.ShortName)
		}
		if cat.Emoji == nil || *cat.Emoji != "📺" {
			t.Errorf("expected emoji to be stored, got %v", cat.Emoji)
		}
	})

	t.Run("code_collision_probes_suffix", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		first, err := svc.Create(CategoryCreate{Name: "Regalos"})
		testutil.AssertNoError(t, err)
		if *first.ShortName != "regalo" {
			t.Fatalf("expected code 'regalo', got %s", *first.ShortName)
		}

		// Same 6-char prefix, so generation must fall back to prefix+N.
		second, err := svc.Create(CategoryCreate{Name: "Regalos Navidad"})
		testutil.AssertNoError(t, err)
		if *second.ShortName != "rega1" {
			t.Errorf("expected probed code 'rega1', got %s", *second.ShortName)
		}
	})

	t.Run("duplicate_name_same_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.Create(CategoryCreate{Name: "Deportes"})
		testutil.AssertNoError(t, err)

		_, err = svc.Create(CategoryCreate{Name: "deportes"})
		testutil.AssertAppError(t, err, "DUPLICATE_NAME")
	})

	t.Run("same_name_different_parent_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		parent, err := svc.Create(CategoryCreate{Name: "Vehiculos"})
		testutil.AssertNoError(t, err)

		_, err = svc.Create(CategoryCreate{Name: "Seguros"})
		testutil.AssertNoError(t, err)

		_, err = svc.Create(CategoryCreate{Name: "Seguros", Code: strPtr("segveh"), ParentIdent: strPtr(parent.Name)})
		testutil.AssertNoError(t, err)
	})

	t.Run("explicit_code_in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.Create(CategoryCreate{Name: "Libros", Code: strPtr("lib")})
		testutil.AssertNoError(t, err)

		_, err = svc.Create(CategoryCreate{Name: "Librerias", Code: strPtr("LIB")})
		testutil.AssertAppError(t, err, "CODE_IN_USE")
	})

	t.Run("parent_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.Create(CategoryCreate{Name: "Huerfana", ParentIdent: strPtr("nada-de-nada")})
		testutil.AssertAppError(t, err, "PARENT_NOT_FOUND")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.Create(CategoryCreate{Name: "   "})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestResolveByIdentifier(t *testing.T) {
	t.Run("code_wins_over_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		byCode, err := svc.Create(CategoryCreate{Name: "Farmacia", Code: strPtr("med")})
		testutil.AssertNoError(t, err)
		_, err = svc.Create(CategoryCreate{Name: "Med", Code: strPtr("medx")})
		testutil.AssertNoError(t, err)

		resolved, err := svc.ResolveByIdentifier("MED")
		testutil.AssertNoError(t, err)
		if resolved.ID != byCode.ID {
			t.Errorf("expected code match %s, got %s", byCode.Name, resolved.Name)
		}
	})

	t.Run("falls_back_to_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{Name: "Jardineria"})
		testutil.AssertNoError(t, err)

		resolved, err := svc.ResolveByIdentifier("JARDINERIA")
		testutil.AssertNoError(t, err)
		if resolved.ID != cat.ID {
			t.Errorf("expected %s, got %s", cat.ID, resolved.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.ResolveByIdentifier("inexistente")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename_and_set_emoji", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{Name: "Cafes"})
		testutil.AssertNoError(t, err)

		updated, applied, err := svc.Update(cat.Name, CategoryUpdate{
			Name:  strPtr("Cafeterias"),
			Emoji: strPtr("☕"),
		})
		testutil.AssertNoError(t, err)
		if updated.Name != "Cafeterias" {
			t.Errorf("expected renamed category, got %s", updated.Name)
		}
		if len(applied) != 2 {
			t.Errorf("expected 2 applied changes, got %v", applied)
		}
	})

	t.Run("no_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{Name: "Peluqueria"})
		testutil.AssertNoError(t, err)

		_, applied, err := svc.Update(cat.Name, CategoryUpdate{})
		testutil.AssertNoError(t, err)
		if len(applied) != 0 {
			t.Errorf("expected no applied changes, got %v", applied)
		}
	})

	t.Run("system_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		sys := testutil.CreateTestSystemCategory(t, db)

		_, _, err := svc.Update(sys.Name, CategoryUpdate{Name: strPtr("otra")})
		testutil.AssertAppError(t, err, "CATEGORY_IMMUTABLE")
	})

	t.Run("clear_code_and_parent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		parent, err := svc.Create(CategoryCreate{Name: "Tecnologia"})
		testutil.AssertNoError(t, err)
		child, err := svc.Create(CategoryCreate{Name: "Gadgets", ParentIdent: strPtr(parent.Name)})
		testutil.AssertNoError(t, err)

		updated, applied, err := svc.Update(child.Name, CategoryUpdate{ClearCode: true, ClearParent: true})
		testutil.AssertNoError(t, err)
		if updated.ShortName != nil {
			t.Errorf("expected cleared code, got %v", *updated.ShortName)
		}
		if updated.ParentID != nil {
			t.Error("expected cleared parent")
		}
		if len(applied) != 2 {
			t.Errorf("expected 2 applied changes, got %v", applied)
		}
	})

	t.Run("self_parent_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{Name: "Bebidas"})
		testutil.AssertNoError(t, err)

		_, _, err = svc.Update(cat.Name, CategoryUpdate{ParentIdent: strPtr(cat.Name)})
		testutil.AssertAppError(t, err, "SELF_PARENT_CATEGORY")
	})

	t.Run("cycle_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		a, err := svc.Create(CategoryCreate{Name: "NivelUno"})
		testutil.AssertNoError(t, err)
		b, err := svc.Create(CategoryCreate{Name: "NivelDos", ParentIdent: strPtr(a.Name)})
		testutil.AssertNoError(t, err)
		c, err := svc.Create(CategoryCreate{Name: "NivelTres", ParentIdent: strPtr(b.Name)})
		testutil.AssertNoError(t, err)

		// Re-parenting the root under its grandchild closes a loop.
		_, _, err = svc.Update(a.Name, CategoryUpdate{ParentIdent: strPtr(c.Name)})
		testutil.AssertAppError(t, err, "CYCLE_DETECTED")
	})

	t.Run("rename_duplicate_in_target_scope", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.Create(CategoryCreate{Name: "Arriendo"})
		testutil.AssertNoError(t, err)
		other, err := svc.Create(CategoryCreate{Name: "Hipoteca"})
		testutil.AssertNoError(t, err)

		_, _, err = svc.Update(other.Name, CategoryUpdate{Name: strPtr("arriendo")})
		testutil.AssertAppError(t, err, "DUPLICATE_NAME")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.Create(CategoryCreate{Name: "Temporal"})
		testutil.AssertNoError(t, err)

		deleted, err := svc.Delete(cat.Name)
		testutil.AssertNoError(t, err)
		if deleted.ID != cat.ID {
			t.Errorf("expected deleted %s, got %s", cat.ID, deleted.ID)
		}

		_, err = svc.ResolveByIdentifier(cat.Name)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("system_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		sys := testutil.CreateTestSystemCategory(t, db)

		_, err := svc.Delete(sys.Name)
		testutil.AssertAppError(t, err, "CATEGORY_IMMUTABLE")
	})

	t.Run("has_children", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		parent, err := svc.Create(CategoryCreate{Name: "Educacion"})
		testutil.AssertNoError(t, err)
		_, err = svc.Create(CategoryCreate{Name: "Cursos", ParentIdent: strPtr(parent.Name)})
		testutil.AssertNoError(t, err)

		_, err = svc.Delete(parent.Name)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_CHILDREN")
	})

	t.Run("has_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.Create(CategoryCreate{Name: "Taxis"})
		testutil.AssertNoError(t, err)

		expense := testutil.CreateTestExpense(t, db, user.ID, 4500)
		if err := db.Model(expense).Update("category_id", cat.ID).Error; err != nil {
			t.Fatalf("failed to attach category: %v", err)
		}

		_, err = svc.Delete(cat.Name)
		testutil.AssertAppError(t, err, "CATEGORY_HAS_EXPENSES")
	})
}

func TestCategoryInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	parent, err := svc.Create(CategoryCreate{Name: "Hobbies"})
	testutil.AssertNoError(t, err)
	child, err := svc.Create(CategoryCreate{Name: "Fotografia", ParentIdent: strPtr(parent.Name)})
	testutil.AssertNoError(t, err)

	for i := 0; i < 3; i++ {
		expense := testutil.CreateTestExpense(t, db, user.ID, 1000)
		if err := db.Model(expense).Update("category_id", child.ID).Error; err != nil {
			t.Fatalf("failed to attach category: %v", err)
		}
	}

	info, err := svc.Info(child.Name)
	testutil.AssertNoError(t, err)
	if info.ParentName != parent.Name {
		t.Errorf("expected parent %s, got %s", parent.Name, info.ParentName)
	}
	if info.ExpenseCount != 3 {
		t.Errorf("expected 3 expenses, got %d", info.ExpenseCount)
	}
}

func TestListCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)

	sys := testutil.CreateTestSystemCategory(t, db)
	_, err := svc.Create(CategoryCreate{Name: "AaPrimera"})
	testutil.AssertNoError(t, err)

	categories, err := svc.List()
	testutil.AssertNoError(t, err)
	if len(categories) < 2 {
		t.Fatalf("expected at least 2 categories, got %d", len(categories))
	}
	if !categories[0].IsSystem {
		t.Errorf("expected system categories first, got %s", categories[0].Name)
	}

	found := false
	for _, c := range categories {
		if strings.EqualFold(c.Name, sys.Name) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s in listing", sys.Name)
	}
}
