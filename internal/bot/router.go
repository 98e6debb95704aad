package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
	"gastobot/internal/services"
	"gastobot/internal/validator"
)

type command int

const (
	cmdExpense command = iota // fallthrough: free-text expense entry
	cmdCategory
	cmdTag
	cmdExpenses
	cmdSummary
	cmdDeleteLast
	cmdSearch
	cmdHelp
	cmdProfile
	cmdName
	cmdCurrency
	cmdStop
	cmdStart
	cmdBlock
	cmdUnblock
	cmdStats
	cmdBudget
)

// commandWords maps every accepted keyword, Spanish and English, to its
// command. Unknown first words fall through to expense parsing.
var commandWords = map[string]command{
	"cat": cmdCategory, "category": cmdCategory, "categories": cmdCategory,
	"categoria": cmdCategory, "categorias": cmdCategory,

	"tag": cmdTag, "tags": cmdTag, "etiqueta": cmdTag, "etiquetas": cmdTag,

	"gastos": cmdExpenses, "g": cmdExpenses,

	"resumen": cmdSummary, "summary": cmdSummary, "total": cmdSummary,

	"borrar": cmdDeleteLast, "delete": cmdDeleteLast, "eliminar": cmdDeleteLast,
	"undo": cmdDeleteLast, "d": cmdDeleteLast,

	"buscar": cmdSearch, "search": cmdSearch, "encontrar": cmdSearch,
	"find": cmdSearch, "f": cmdSearch,

	"tutorial": cmdHelp, "ayuda": cmdHelp, "help": cmdHelp,

	"perfil": cmdProfile, "profile": cmdProfile,
	"nombre": cmdName,
	"moneda": cmdCurrency,
	"stop":   cmdStop,
	"start":  cmdStart,

	"block": cmdBlock, "bloquear": cmdBlock,
	"unblock": cmdUnblock, "desbloquear": cmdUnblock,
	"stats": cmdStats,

	"presupuesto": cmdBudget,
}

var monthNames = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4,
	"mayo": 5, "junio": 6, "julio": 7, "agosto": 8,
	"septiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
}

// Router maps one admitted event to service calls and builds the replies.
// Services are constructed per dispatch, bound to the message transaction.
type Router struct {
	now func() time.Time
}

// NewRouter creates a new command router.
func NewRouter() *Router {
	return &Router{now: time.Now}
}

// txServices bundles the service set bound to one transaction.
type txServices struct {
	users      services.UserServicer
	categories services.CategoryServicer
	tags       services.TagServicer
	expenses   services.ExpenseServicer
	reports    services.ReportServicer
	budgets    services.BudgetServicer
}

func newTxServices(tx *gorm.DB) *txServices {
	categories := services.NewCategoryService(tx)
	tags := services.NewTagService(tx)
	return &txServices{
		users:      services.NewUserService(tx),
		categories: categories,
		tags:       tags,
		expenses:   services.NewExpenseService(tx, categories, tags),
		reports:    services.NewReportService(tx),
		budgets:    services.NewBudgetService(tx, categories),
	}
}

// Dispatch routes one event. Returned AppErrors with user-facing status
// codes become the reply; anything else rolls back the message.
func (r *Router) Dispatch(tx *gorm.DB, user *models.User, event Event) ([]Outbound, error) {
	svc := newTxServices(tx)

	if event.Interactive != nil {
		return r.handleAction(svc, user, event.Interactive.ActionID)
	}

	fields := strings.Fields(strings.TrimSpace(event.Text))
	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrParse, "El mensaje está vacío.")
	}

	cmd, known := commandWords[strings.ToLower(fields[0])]
	if !known {
		cmd = cmdExpense
	}
	args := fields[1:]

	// A paused profile only reacts to start and help.
	if !user.IsActive && cmd != cmdStart && cmd != cmdHelp {
		return []Outbound{{Text: "Tu perfil está pausado. Escribe 'start' para reactivarlo."}}, nil
	}

	switch cmd {
	case cmdCategory:
		return r.handleCategory(svc, args)
	case cmdTag:
		return r.handleTag(svc, user, args)
	case cmdExpenses:
		return r.handleExpenses(svc, user, args)
	case cmdSummary:
		return r.handleSummary(svc, user, args)
	case cmdDeleteLast:
		return r.handleDeleteLast(svc, user)
	case cmdSearch:
		return r.handleSearch(svc, user, args)
	case cmdHelp:
		return []Outbound{{Text: tutorialText}}, nil
	case cmdProfile:
		return []Outbound{{Text: formatProfile(user)}}, nil
	case cmdName:
		return r.handleName(svc, user, args)
	case cmdCurrency:
		return r.handleCurrency(svc, user, args)
	case cmdStop:
		if err := svc.users.SetActive(user, false); err != nil {
			return nil, err
		}
		return []Outbound{{Text: "Listo, tu perfil quedó pausado. Escribe 'start' cuando quieras volver."}}, nil
	case cmdStart:
		if err := svc.users.SetActive(user, true); err != nil {
			return nil, err
		}
		return []Outbound{{Text: "¡Bienvenido de vuelta! Tu perfil está activo."}}, nil
	case cmdBlock:
		return r.handleBlock(svc, user, args, true)
	case cmdUnblock:
		return r.handleBlock(svc, user, args, false)
	case cmdStats:
		return r.handleStats(svc, user)
	case cmdBudget:
		return r.handleBudget(svc, user, args)
	default:
		return r.handleExpense(svc, user, event.Text)
	}
}

func (r *Router) handleAction(svc *txServices, user *models.User, actionID string) ([]Outbound, error) {
	expense, label, err := svc.expenses.HandleAction(user, actionID)
	if err != nil {
		return nil, err
	}
	return []Outbound{{Text: formatActionResult(expense, label)}}, nil
}

func (r *Router) handleExpense(svc *txServices, user *models.User, text string) ([]Outbound, error) {
	expense, err := svc.expenses.CreateFromText(user, text, r.now().UTC())
	if err != nil {
		return nil, err
	}
	return []Outbound{{
		Text:    formatExpensePrompt(expense),
		Confirm: &ConfirmPrompt{ExpenseID: expense.ID},
	}}, nil
}

func (r *Router) handleTag(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		tags, err := svc.tags.ListForUser(user.ID)
		if err != nil {
			return nil, err
		}
		return []Outbound{{Text: formatTags(tags, "🏷️ Tus etiquetas:")}}, nil
	}

	switch strings.ToLower(args[0]) {
	case "todas", "all":
		tags, err := svc.tags.List()
		if err != nil {
			return nil, err
		}
		return []Outbound{{Text: formatTags(tags, "🏷️ Todas las etiquetas:")}}, nil
	case "crear", "create", "add", "+":
		if len(args) < 2 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Uso: etiqueta crear <nombre>")
		}
		tag, created, err := svc.tags.Create(args[1])
		if err != nil {
			return nil, err
		}
		if !created {
			return []Outbound{{Text: fmt.Sprintf("La etiqueta @%s ya existía.", tag.Name)}}, nil
		}
		return []Outbound{{Text: fmt.Sprintf("✅ Etiqueta @%s creada.", tag.Name)}}, nil
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"Uso: etiqueta | etiqueta todas | etiqueta crear <nombre>")
	}
}

// handleExpenses lists the ledger: by tags when every argument is an
// @etiqueta, otherwise by month (name or number) and optional year.
func (r *Router) handleExpenses(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	if len(args) > 0 && strings.HasPrefix(args[0], "@") {
		list, err := svc.reports.ListByTags(user.ID, args)
		if err != nil {
			return nil, err
		}
		title := "💰 Gastos con " + strings.Join(args, " ")
		return []Outbound{{Text: formatExpenseList(list, title)}}, nil
	}

	now := r.now()
	month := int(now.Month())
	year := now.Year()
	var categoryIdent string
	if len(args) > 0 {
		m, ok := parseMonth(args[0])
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"No entendí el mes. Ejemplos: gastos, gastos marzo, gastos 3 2025")
		}
		month = m
		args = args[1:]
		if len(args) > 0 {
			if y, err := strconv.Atoi(args[0]); err == nil {
				if y < 2000 || y > 2100 {
					return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "El año no es válido.")
				}
				year = y
				args = args[1:]
			}
		}
		if len(args) > 0 {
			categoryIdent = strings.Join(args, " ")
		}
	}

	list, err := svc.reports.ListByMonth(user.ID, &month, year)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("💰 Gastos de %s %d", monthName(month), year)
	if categoryIdent != "" {
		category, err := svc.categories.ResolveByIdentifier(categoryIdent)
		if err != nil {
			return nil, err
		}
		list = filterByCategory(list, category.ID)
		title += " en " + category.Name
	}
	return []Outbound{{Text: formatExpenseList(list, title)}}, nil
}

// filterByCategory narrows a listing to one category, recomputing totals.
func filterByCategory(list *services.ExpenseList, categoryID string) *services.ExpenseList {
	filtered := &services.ExpenseList{Totals: make(map[string]float64)}
	for _, e := range list.Expenses {
		if e.CategoryID == nil || *e.CategoryID != categoryID {
			continue
		}
		filtered.Expenses = append(filtered.Expenses, e)
		filtered.Totals[e.Currency] += e.Amount
	}
	return filtered
}

func (r *Router) handleSummary(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	now := r.now().UTC()

	if len(args) == 0 {
		report, err := svc.reports.Monthly(user.ID, int(now.Month()), now.Year())
		if err != nil {
			return nil, err
		}
		title := fmt.Sprintf("📊 Resumen de %s %d", monthName(int(now.Month())), now.Year())
		return []Outbound{{Text: formatSummary(report, title)}}, nil
	}

	switch strings.ToLower(args[0]) {
	case "dia", "día", "hoy", "day":
		report, err := svc.reports.Daily(user.ID, now)
		if err != nil {
			return nil, err
		}
		return []Outbound{{Text: formatSummary(report, "📊 Resumen de hoy")}}, nil
	case "semana", "week":
		report, err := svc.reports.Weekly(user.ID, now)
		if err != nil {
			return nil, err
		}
		return []Outbound{{Text: formatSummary(report, "📊 Resumen de la semana")}}, nil
	case "mes", "month":
		report, err := svc.reports.Monthly(user.ID, int(now.Month()), now.Year())
		if err != nil {
			return nil, err
		}
		title := fmt.Sprintf("📊 Resumen de %s %d", monthName(int(now.Month())), now.Year())
		return []Outbound{{Text: formatSummary(report, title)}}, nil
	}

	month, ok := parseMonth(args[0])
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"Uso: resumen [dia|semana|mes|<mes> [año]]")
	}
	year := now.Year()
	if len(args) > 1 {
		y, err := strconv.Atoi(args[1])
		if err != nil || y < 2000 || y > 2100 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "El año no es válido.")
		}
		year = y
	}
	report, err := svc.reports.Monthly(user.ID, month, year)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("📊 Resumen de %s %d", monthName(month), year)
	return []Outbound{{Text: formatSummary(report, title)}}, nil
}

func (r *Router) handleDeleteLast(svc *txServices, user *models.User) ([]Outbound, error) {
	expense, err := svc.expenses.DeleteLast(user)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return []Outbound{{Text: "No hay gastos para borrar."}}, nil
	}
	return []Outbound{{Text: formatDeleted(expense)}}, nil
}

func (r *Router) handleSearch(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	term := strings.Join(args, " ")
	list, err := svc.reports.Search(user.ID, term)
	if err != nil {
		return nil, err
	}
	return []Outbound{{Text: formatSearchResults(list, term)}}, nil
}

func (r *Router) handleName(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Uso: nombre <tu nombre>")
	}
	name := strings.Join(args, " ")
	if err := svc.users.SetDisplayName(user, name); err != nil {
		return nil, err
	}
	return []Outbound{{Text: fmt.Sprintf("¡Hola %s! Nombre actualizado.", name)}}, nil
}

func (r *Router) handleCurrency(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Uso: moneda <código> (ej: moneda CLP)")
	}
	code := strings.ToUpper(args[0])
	if !validator.IsISO4217(code) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"No conozco esa moneda. Usa un código ISO como CLP o USD.")
	}
	if err := svc.users.SetCurrency(user, code); err != nil {
		return nil, err
	}
	return []Outbound{{Text: fmt.Sprintf("Moneda por defecto actualizada a %s.", code)}}, nil
}

func (r *Router) handleBlock(svc *txServices, admin *models.User, args []string, blocked bool) ([]Outbound, error) {
	if !admin.IsAdmin {
		return nil, apperrors.ErrAdminOnly
	}
	if len(args) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Uso: block <teléfono> / unblock <teléfono>")
	}
	target, err := svc.users.SetBlocked(args[0], blocked)
	if err != nil {
		return nil, err
	}
	if blocked {
		return []Outbound{{Text: fmt.Sprintf("🚫 Usuario %s bloqueado.", target.Phone)}}, nil
	}
	return []Outbound{{Text: fmt.Sprintf("✅ Usuario %s desbloqueado.", target.Phone)}}, nil
}

func (r *Router) handleStats(svc *txServices, admin *models.User) ([]Outbound, error) {
	if !admin.IsAdmin {
		return nil, apperrors.ErrAdminOnly
	}
	active, blocked, err := svc.users.CountByStatus()
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("📈 Usuarios\nActivos: %d\nBloqueados: %d", active, blocked)
	return []Outbound{{Text: text}}, nil
}

func (r *Router) handleBudget(svc *txServices, user *models.User, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		progress, err := svc.budgets.Progress(user.ID, r.now().UTC())
		if err != nil {
			return nil, err
		}
		return []Outbound{{Text: formatBudgets(progress)}}, nil
	}
	if len(args) < 2 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"Uso: presupuesto | presupuesto <categoría> <monto>")
	}

	// The amount may come first or last; the remaining words are the category.
	categoryIdent, amount, ok := splitBudgetArgs(args)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("No pude interpretar el monto en '%s'. Ejemplo: presupuesto comida 100000.", strings.Join(args, " ")))
	}
	budget, err := svc.budgets.Set(user, categoryIdent, amount)
	if err != nil {
		return nil, err
	}
	name := categoryIdent
	if budget.Category != nil {
		name = budget.Category.Name
	}
	return []Outbound{{Text: fmt.Sprintf("✅ Presupuesto mensual de %s para %s.",
		formatMoney(budget.Amount, budget.Currency), name)}}, nil
}

// splitBudgetArgs reads `<categoría> <monto>` or `<monto> <categoría>`,
// whichever way the amount parses as a number.
func splitBudgetArgs(args []string) (string, float64, bool) {
	last := len(args) - 1
	if amount, err := parseAmountToken(args[last]); err == nil {
		return strings.Join(args[:last], " "), amount, true
	}
	if amount, err := parseAmountToken(args[0]); err == nil {
		return strings.Join(args[1:], " "), amount, true
	}
	return "", 0, false
}

func parseAmountToken(token string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
}

// parseMonth accepts a Spanish month name or a 1-12 number.
func parseMonth(token string) (int, bool) {
	token = strings.ToLower(token)
	if m, ok := monthNames[token]; ok {
		return m, true
	}
	m, err := strconv.Atoi(token)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

func monthName(month int) string {
	for name, m := range monthNames {
		if m == month {
			return name
		}
	}
	return strconv.Itoa(month)
}
