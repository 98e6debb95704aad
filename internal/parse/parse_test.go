package parse

import (
	"testing"
	"time"

	"gastobot/internal/testutil"
)

var now = time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)

func TestMessage(t *testing.T) {
	t.Run("integer_amount", func(t *testing.T) {
		draft, err := Message("15000 comida almuerzo", now)
		testutil.AssertNoError(t, err)

		if draft.Amount != 15000 || draft.Decimal {
			t.Errorf("expected integer 15000, got %f decimal=%v", draft.Amount, draft.Decimal)
		}
		if draft.CategoryRef != "comida" {
			t.Errorf("expected category ref 'comida', got %q", draft.CategoryRef)
		}
		if draft.Description != "almuerzo" {
			t.Errorf("expected description 'almuerzo', got %q", draft.Description)
		}
		if !draft.Date.IsZero() {
			t.Errorf("expected no explicit date, got %s", draft.Date)
		}
	})

	t.Run("decimal_amount_comma", func(t *testing.T) {
		draft, err := Message("12,50 comida sandwich", now)
		testutil.AssertNoError(t, err)
		if draft.Amount != 12.5 || !draft.Decimal {
			t.Errorf("expected decimal 12.5, got %f decimal=%v", draft.Amount, draft.Decimal)
		}
	})

	t.Run("decimal_amount_dot", func(t *testing.T) {
		draft, err := Message("9.99 apps spotify", now)
		testutil.AssertNoError(t, err)
		if draft.Amount != 9.99 || !draft.Decimal {
			t.Errorf("expected decimal 9.99, got %f decimal=%v", draft.Amount, draft.Decimal)
		}
	})

	t.Run("tags_and_date_stripped", func(t *testing.T) {
		draft, err := Message("8500 comida cafe 15/03 @trabajo", now)
		testutil.AssertNoError(t, err)

		if len(draft.Tags) != 1 || draft.Tags[0] != "trabajo" {
			t.Errorf("expected tag 'trabajo', got %v", draft.Tags)
		}
		want := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
		if !draft.Date.Equal(want) {
			t.Errorf("expected %s, got %s", want, draft.Date)
		}
		if draft.Description != "cafe" {
			t.Errorf("expected description 'cafe', got %q", draft.Description)
		}
	})

	t.Run("date_with_two_digit_year", func(t *testing.T) {
		draft, err := Message("2000 comida once 5-7-25", now)
		testutil.AssertNoError(t, err)
		want := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)
		if !draft.Date.Equal(want) {
			t.Errorf("expected %s, got %s", want, draft.Date)
		}
	})

	t.Run("three_digit_year_ignored", func(t *testing.T) {
		// Years are YYYY or YY; 5/7/123 is not a date.
		draft, err := Message("2000 comida cena 5/7/123", now)
		testutil.AssertNoError(t, err)
		if !draft.Date.IsZero() {
			t.Errorf("expected no date, got %s", draft.Date)
		}
	})

	t.Run("four_digit_year", func(t *testing.T) {
		draft, err := Message("2000 comida cena 5/7/2024", now)
		testutil.AssertNoError(t, err)
		want := time.Date(2024, 7, 5, 12, 0, 0, 0, time.UTC)
		if !draft.Date.Equal(want) {
			t.Errorf("expected %s, got %s", want, draft.Date)
		}
	})

	t.Run("invalid_calendar_date_ignored", func(t *testing.T) {
		// 31/02 is not a real date, so the token stays in the description.
		draft, err := Message("2000 comida cena 31/02", now)
		testutil.AssertNoError(t, err)
		if !draft.Date.IsZero() {
			t.Errorf("expected no date, got %s", draft.Date)
		}
	})

	t.Run("default_description", func(t *testing.T) {
		draft, err := Message("3000 transporte", now)
		testutil.AssertNoError(t, err)
		if draft.Description != "No description" {
			t.Errorf("expected default description, got %q", draft.Description)
		}
	})

	t.Run("amount_only", func(t *testing.T) {
		draft, err := Message("4000", now)
		testutil.AssertNoError(t, err)
		if draft.CategoryRef != "" {
			t.Errorf("expected no category ref, got %q", draft.CategoryRef)
		}
	})

	t.Run("multiple_tags", func(t *testing.T) {
		draft, err := Message("5000 comida asado @familia @finde", now)
		testutil.AssertNoError(t, err)
		if len(draft.Tags) != 2 || draft.Tags[0] != "familia" || draft.Tags[1] != "finde" {
			t.Errorf("expected tags in order, got %v", draft.Tags)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		for _, text := range []string{"", "   ", "hola que tal", "-5000 comida", "-12,50 comida"} {
			if _, err := Message(text, now); err == nil {
				t.Errorf("expected parse error for %q", text)
			} else {
				testutil.AssertAppError(t, err, "PARSE_ERROR")
			}
		}
	})
}
