package bot

import (
	"fmt"
	"sort"
	"strings"

	"gastobot/internal/models"
	"gastobot/internal/money"
	"gastobot/internal/services"
)

const tutorialText = `👋 ¡Hola! Soy tu asistente de gastos.

💰 Registrar un gasto:
15000 comida almuerzo
12,50 comida sandwich (decimales = USD)
8500 comida cafe 15/03 @trabajo

📂 Categorías: escribe "categoria"
🏷️ Etiquetas: escribe "etiqueta"
💰 Ver gastos: "gastos", "gastos marzo", "gastos @viaje"
📊 Resúmenes: "resumen", "resumen dia", "resumen semana"
🔍 Buscar: "buscar almuerzo"
🗑️ Borrar el último gasto: "borrar"
🎯 Presupuestos: "presupuesto comida 100000"

Después de registrar un gasto te pediré confirmarlo con un botón.`

func formatMoney(amount float64, currency string) string {
	return money.Format(amount, currency)
}

// formatExpensePrompt renders the draft that accompanies the confirm
// buttons.
func formatExpensePrompt(e *models.Expense) string {
	var b strings.Builder
	b.WriteString("💰 Nuevo gasto:\n")
	b.WriteString(formatMoney(e.Amount, e.Currency))
	if e.Category != nil {
		b.WriteString(" - ")
		if e.Category.Emoji != nil {
			b.WriteString(*e.Category.Emoji + " ")
		}
		b.WriteString(e.Category.Name)
	}
	b.WriteString("\n📝 " + e.Description)
	b.WriteString("\n📅 " + e.ExpenseDate.Format("02/01/2006"))
	if len(e.Tags) > 0 {
		b.WriteString("\n🏷️ " + joinTags(e.Tags))
	}
	b.WriteString("\n\n¿Confirmar este gasto?")
	return b.String()
}

func formatActionResult(e *models.Expense, label string) string {
	emoji := "✅"
	if e.Status == models.ExpenseStatusRejected {
		emoji = "❌"
	}
	return fmt.Sprintf("%s Gasto de %s %s.", emoji, formatMoney(e.Amount, e.Currency), label)
}

func formatDeleted(e *models.Expense) string {
	return fmt.Sprintf("🗑️ Gasto eliminado: %s - %s", formatMoney(e.Amount, e.Currency), e.Description)
}

func formatExpenseList(list *services.ExpenseList, title string) string {
	if len(list.Expenses) == 0 {
		return title + "\n\nNo hay gastos registrados."
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	for _, e := range list.Expenses {
		b.WriteString("\n" + formatMoney(e.Amount, e.Currency))
		if e.Category != nil {
			b.WriteString(" - " + e.Category.Name)
		}
		b.WriteString(" - " + e.Description)
		b.WriteString(" (" + e.ExpenseDate.Format("02/01") + ")")
	}
	b.WriteString("\n\nTotal: " + formatTotals(list.Totals))
	return b.String()
}

func formatSummary(report *services.SummaryReport, title string) string {
	if report.Count == 0 {
		return title + "\n\nNo hay gastos en este período."
	}

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(fmt.Sprintf("\nGastos: %d", report.Count))
	b.WriteString("\nTotal: " + formatTotals(report.Totals))
	if len(report.DailyAverage) > 0 {
		b.WriteString("\nPromedio diario: " + formatTotals(report.DailyAverage))
	}

	if len(report.ByCategory) > 0 {
		b.WriteString("\n\n📂 Por categoría:")
		for _, c := range report.ByCategory {
			b.WriteString(fmt.Sprintf("\n%s: %s (%d)", c.Name, formatTotals(c.Totals), c.Count))
		}
	}
	if report.TopCategory != "" {
		b.WriteString("\n\n🥇 Mayor gasto: " + report.TopCategory)
	}
	return b.String()
}

func formatSearchResults(list *services.ExpenseList, term string) string {
	if len(list.Expenses) == 0 {
		return fmt.Sprintf("🔍 Sin resultados para '%s'.", term)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 Resultados para '%s':\n", term))
	for _, e := range list.Expenses {
		b.WriteString("\n" + formatMoney(e.Amount, e.Currency))
		if e.Category != nil {
			b.WriteString(" - " + e.Category.Name)
		}
		b.WriteString(" - " + e.Description)
		b.WriteString(" (" + e.ExpenseDate.Format("02/01/2006") + ")")
	}
	return b.String()
}

func formatCategoryList(categories []models.Category) string {
	if len(categories) == 0 {
		return "📂 No hay categorías. Crea una con: categoria crear <nombre>"
	}

	var b strings.Builder
	b.WriteString("📂 Categorías:\n")
	for _, c := range categories {
		b.WriteString("\n")
		if c.Emoji != nil {
			b.WriteString(*c.Emoji + " ")
		}
		b.WriteString(c.Name)
		if c.ShortName != nil {
			b.WriteString(" (" + *c.ShortName + ")")
		}
		if c.Parent != nil {
			b.WriteString(" ← " + c.Parent.Name)
		}
	}
	return b.String()
}

func formatCategoryInfo(info *services.CategoryInfo) string {
	c := info.Category
	var b strings.Builder
	b.WriteString("📂 ")
	if c.Emoji != nil {
		b.WriteString(*c.Emoji + " ")
	}
	b.WriteString(c.Name + "\n")
	if c.ShortName != nil {
		b.WriteString("\nCódigo: " + *c.ShortName)
	}
	if info.ParentName != "" {
		b.WriteString("\nPadre: " + info.ParentName)
	}
	if c.IsSystem {
		b.WriteString("\nTipo: sistema")
	} else {
		b.WriteString("\nTipo: personalizada")
	}
	b.WriteString(fmt.Sprintf("\nGastos asociados: %d", info.ExpenseCount))
	return b.String()
}

func formatTags(tags []models.Tag, title string) string {
	if len(tags) == 0 {
		return "🏷️ No hay etiquetas todavía. Agrega una con @nombre en un gasto."
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, "@"+t.Name)
	}
	return title + "\n" + strings.Join(names, " ")
}

func formatProfile(user *models.User) string {
	name := user.DisplayName
	if name == "" {
		name = "(sin nombre)"
	}
	var b strings.Builder
	b.WriteString("👤 Tu perfil:\n")
	b.WriteString("\nNombre: " + name)
	b.WriteString("\nTeléfono: " + user.Phone)
	b.WriteString("\nMoneda: " + user.DefaultCurrency)
	b.WriteString("\nZona horaria: " + user.Timezone)
	if user.IsActive {
		b.WriteString("\nEstado: activo")
	} else {
		b.WriteString("\nEstado: pausado")
	}
	return b.String()
}

func formatBudgets(progress []services.BudgetProgress) string {
	if len(progress) == 0 {
		return "🎯 No tienes presupuestos. Crea uno con: presupuesto <categoría> <monto>"
	}

	var b strings.Builder
	b.WriteString("🎯 Presupuestos del mes:\n")
	for _, p := range progress {
		bar := "🟢"
		if p.Percentage >= 100 {
			bar = "🔴"
		} else if p.Percentage >= 80 {
			bar = "🟡"
		}
		b.WriteString(fmt.Sprintf("\n%s %s: %s de %s (%.0f%%)",
			bar, p.CategoryName,
			formatMoney(p.Spent, p.Currency),
			formatMoney(p.Budgeted, p.Currency),
			p.Percentage))
	}
	return b.String()
}

// formatTotals renders a per-currency totals map in stable order.
func formatTotals(totals map[string]float64) string {
	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	parts := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		parts = append(parts, formatMoney(totals[currency], currency))
	}
	return strings.Join(parts, " + ")
}

func joinTags(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, "@"+t.Name)
	}
	return strings.Join(names, " ")
}
