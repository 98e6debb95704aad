package bot

import (
	"fmt"
	"strings"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/services"
)

// Sub-action keywords for the category command.
var categoryActions = map[string]string{
	"list": "list", "l": "list", "ls": "list", "show": "list", "lista": "list",
	"create": "create", "c": "create", "add": "create", "+": "create", "crear": "create",
	"update": "update", "u": "update", "edit": "update", "rename": "update", "editar": "update",
	"delete": "delete", "d": "delete", "remove": "delete", "rm": "delete", "del": "delete",
	"borrar": "delete", "eliminar": "delete",
	"info": "info", "i": "info", "details": "info",
	"help": "help", "h": "help", "?": "help", "ayuda": "help",
}

// clearTokens are option values that reset a field instead of setting it.
var clearTokens = map[string]bool{
	"": true, "-": true, "none": true, "null": true, "ninguno": true,
}

const categoryHelpText = `📂 Comandos de categorías:
categoria → lista todas
categoria crear <nombre> [code=<código>] [emoji=<emoji>] [parent=<categoría>]
categoria editar <categoría> [nombre] [code=...] [emoji=...] [parent=...]
categoria borrar <categoría>
categoria info <categoría>`

// handleCategory routes `categoria <acción> ...`. A bare `categoria`
// lists; an unknown action shows the help.
func (r *Router) handleCategory(svc *txServices, args []string) ([]Outbound, error) {
	action := "list"
	if len(args) > 0 {
		mapped, ok := categoryActions[strings.ToLower(args[0])]
		if !ok {
			return []Outbound{{Text: categoryHelpText}}, nil
		}
		action = mapped
		args = args[1:]
	}

	switch action {
	case "list":
		return r.categoryList(svc)
	case "create":
		return r.categoryCreate(svc, args)
	case "update":
		return r.categoryUpdate(svc, args)
	case "delete":
		return r.categoryDelete(svc, args)
	case "info":
		return r.categoryInfo(svc, args)
	default:
		return []Outbound{{Text: categoryHelpText}}, nil
	}
}

func (r *Router) categoryList(svc *txServices) ([]Outbound, error) {
	categories, err := svc.categories.List()
	if err != nil {
		return nil, err
	}
	return []Outbound{{Text: formatCategoryList(categories)}}, nil
}

func (r *Router) categoryCreate(svc *txServices, args []string) ([]Outbound, error) {
	name, options := splitOptions(args)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"Uso: categoria crear <nombre> [code=...] [emoji=...] [parent=...]")
	}

	params := services.CategoryCreate{Name: name}
	for key, value := range options {
		switch key {
		case "code", "short", "alias":
			v := value
			params.Code = &v
		case "emoji":
			v := value
			params.Emoji = &v
		case "parent", "padre":
			v := value
			params.ParentIdent = &v
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("Opción desconocida '%s'.", key))
		}
	}

	category, err := svc.categories.Create(params)
	if err != nil {
		return nil, err
	}
	code := ""
	if category.ShortName != nil {
		code = *category.ShortName
	}
	return []Outbound{{Text: fmt.Sprintf("✅ Categoría '%s' creada (código: %s).", category.Name, code)}}, nil
}

func (r *Router) categoryUpdate(svc *txServices, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"Uso: categoria editar <categoría> [nombre] [code=...] [emoji=...] [parent=...]")
	}
	ident := args[0]
	newName, options := splitOptions(args[1:])

	changes := services.CategoryUpdate{}
	if newName != "" {
		changes.Name = &newName
	}
	for key, value := range options {
		switch key {
		case "code", "short", "alias":
			if clearTokens[strings.ToLower(value)] {
				changes.ClearCode = true
			} else {
				v := value
				changes.Code = &v
			}
		case "emoji":
			if clearTokens[strings.ToLower(value)] {
				changes.ClearEmoji = true
			} else {
				v := value
				changes.Emoji = &v
			}
		case "parent", "padre":
			if clearTokens[strings.ToLower(value)] {
				changes.ClearParent = true
			} else {
				v := value
				changes.ParentIdent = &v
			}
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("Opción desconocida '%s'.", key))
		}
	}

	category, applied, err := svc.categories.Update(ident, changes)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return []Outbound{{Text: "No hay cambios que aplicar."}}, nil
	}
	return []Outbound{{Text: fmt.Sprintf("✅ Categoría '%s' actualizada: %s.",
		category.Name, strings.Join(applied, ", "))}}, nil
}

func (r *Router) categoryDelete(svc *txServices, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Uso: categoria borrar <categoría>")
	}
	category, err := svc.categories.Delete(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	return []Outbound{{Text: fmt.Sprintf("🗑️ Categoría '%s' eliminada.", category.Name)}}, nil
}

func (r *Router) categoryInfo(svc *txServices, args []string) ([]Outbound, error) {
	if len(args) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Uso: categoria info <categoría>")
	}
	info, err := svc.categories.Info(strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	return []Outbound{{Text: formatCategoryInfo(info)}}, nil
}

// splitOptions separates positional words from key=value options. The
// positional words join into a single name; option keys are lowercased.
func splitOptions(args []string) (string, map[string]string) {
	var positional []string
	options := make(map[string]string)
	for _, arg := range args {
		if key, value, found := strings.Cut(arg, "="); found {
			options[strings.ToLower(key)] = value
			continue
		}
		positional = append(positional, arg)
	}
	return strings.Join(positional, " "), options
}
