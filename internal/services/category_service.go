package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
)

// categoryService handles the category hierarchy: lookup by short code or
// name, creation with auto-generated codes, guarded updates and deletes,
// and cycle prevention on re-parenting.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// List returns all categories, system ones first, then by name.
func (s *categoryService) List() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Preload("Parent").
		Order("is_system DESC").
		Order("LOWER(name)").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// ResolveByIdentifier looks a category up by short code first, then by
// name, both case-insensitive. First match wins.
func (s *categoryService) ResolveByIdentifier(ident string) (*models.Category, error) {
	ident = strings.ToLower(strings.TrimSpace(ident))
	if ident == "" {
		return nil, apperrors.ErrCategoryNotFound
	}

	var category models.Category
	err := s.db.Where("LOWER(short_name) = ?", ident).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	err = s.db.Where("LOWER(name) = ?", ident).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound,
		fmt.Sprintf("No se encontró la categoría '%s'.", ident))
}

// Create creates a non-system category. An explicit code must be globally
// unique; otherwise a code is generated from the name.
func (s *categoryService) Create(params CategoryCreate) (*models.Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Debes indicar un nombre.")
	}

	var parent *models.Category
	if params.ParentIdent != nil {
		p, err := s.ResolveByIdentifier(*params.ParentIdent)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrParentNotFound,
				fmt.Sprintf("No se encontró la categoría padre '%s'.", *params.ParentIdent))
		}
		parent = p
	}

	var parentID *string
	if parent != nil {
		parentID = &parent.ID
	}
	exists, err := s.nameExists(name, parentID, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateName
	}

	var shortName string
	if params.Code != nil && normalizeCode(*params.Code) != "" {
		shortName = normalizeCode(*params.Code)
		inUse, err := s.getByShortName(shortName)
		if err != nil {
			return nil, err
		}
		if inUse != nil {
			return nil, apperrors.WithMessage(apperrors.ErrCodeInUse,
				fmt.Sprintf("El código '%s' ya está en uso.", shortName))
		}
	} else {
		shortName, err = s.generateShortName(name)
		if err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:      name,
		ShortName: &shortName,
		Emoji:     params.Emoji,
		ParentID:  parentID,
		IsSystem:  false,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	category.Parent = parent
	return category, nil
}

// Update applies the requested changes to a non-system category. It
// returns the updated category plus Spanish fragments describing each
// applied change; an empty slice means nothing changed.
func (s *categoryService) Update(ident string, changes CategoryUpdate) (*models.Category, []string, error) {
	target, err := s.ResolveByIdentifier(ident)
	if err != nil {
		return nil, nil, err
	}
	if target.IsSystem {
		return nil, nil, apperrors.WithMessage(apperrors.ErrCategoryImmutable, "No puedes editar categorías del sistema.")
	}

	updates := make(map[string]interface{})
	var applied []string

	// Resolve the final parent first so the name uniqueness check runs
	// against the scope the category will end up in.
	finalParentID := target.ParentID
	if changes.ClearParent {
		updates["parent_id"] = nil
		finalParentID = nil
		applied = append(applied, "sin categoría padre")
	} else if changes.ParentIdent != nil {
		parent, err := s.ResolveByIdentifier(*changes.ParentIdent)
		if err != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrParentNotFound,
				fmt.Sprintf("No se encontró la categoría padre '%s'.", *changes.ParentIdent))
		}
		if parent.ID == target.ID {
			return nil, nil, apperrors.ErrSelfParentCategory
		}
		isDesc, err := s.isDescendant(parent, target)
		if err != nil {
			return nil, nil, err
		}
		if isDesc {
			return nil, nil, apperrors.ErrCycleDetected
		}
		updates["parent_id"] = parent.ID
		finalParentID = &parent.ID
		applied = append(applied, fmt.Sprintf("padre='%s'", parent.Name))
	}

	if changes.Name != nil {
		newName := strings.TrimSpace(*changes.Name)
		if newName != "" && newName != target.Name {
			exists, err := s.nameExists(newName, finalParentID, target.ID)
			if err != nil {
				return nil, nil, err
			}
			if exists {
				return nil, nil, apperrors.WithMessage(apperrors.ErrDuplicateName, "Ya existe otra categoría con ese nombre.")
			}
			updates["name"] = newName
			target.Name = newName
			applied = append(applied, fmt.Sprintf("nombre='%s'", newName))
		}
	}

	if changes.ClearCode {
		updates["short_name"] = nil
		target.ShortName = nil
		applied = append(applied, "código eliminado")
	} else if changes.Code != nil {
		newCode := normalizeCode(*changes.Code)
		if newCode != "" {
			existing, err := s.getByShortName(newCode)
			if err != nil {
				return nil, nil, err
			}
			if existing != nil && existing.ID != target.ID {
				return nil, nil, apperrors.WithMessage(apperrors.ErrCodeInUse,
					fmt.Sprintf("El código '%s' ya está en uso.", newCode))
			}
			updates["short_name"] = newCode
			target.ShortName = &newCode
			applied = append(applied, fmt.Sprintf("código='%s'", newCode))
		}
	}

	if changes.ClearEmoji {
		updates["emoji"] = nil
		target.Emoji = nil
		applied = append(applied, "emoji eliminado")
	} else if changes.Emoji != nil && *changes.Emoji != "" {
		updates["emoji"] = *changes.Emoji
		target.Emoji = changes.Emoji
		applied = append(applied, fmt.Sprintf("emoji='%s'", *changes.Emoji))
	}

	if len(applied) == 0 {
		return target, nil, nil
	}

	if err := s.db.Model(&models.Category{}).Where("id = ?", target.ID).Updates(updates).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	target.ParentID = finalParentID
	return target, applied, nil
}

// Delete removes a category that is non-system, childless, and has no
// referencing expenses. Each guard rejects with its own message.
func (s *categoryService) Delete(ident string) (*models.Category, error) {
	category, err := s.ResolveByIdentifier(ident)
	if err != nil {
		return nil, err
	}
	if category.IsSystem {
		return nil, apperrors.WithMessage(apperrors.ErrCategoryImmutable, "No puedes eliminar categorías del sistema.")
	}

	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", category.ID).Count(&childCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return nil, apperrors.ErrCategoryHasChildren
	}

	var expenseCount int64
	if err := s.db.Model(&models.Expense{}).Where("category_id = ?", category.ID).Count(&expenseCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenseCount > 0 {
		return nil, apperrors.ErrCategoryHasExpenses
	}

	if err := s.db.Delete(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// Info returns the detail view: parent, scope, and live expense count.
func (s *categoryService) Info(ident string) (*CategoryInfo, error) {
	category, err := s.ResolveByIdentifier(ident)
	if err != nil {
		return nil, err
	}

	parentName := ""
	if category.ParentID != nil {
		var parent models.Category
		if err := s.db.First(&parent, "id = ?", *category.ParentID).Error; err == nil {
			parentName = parent.Name
		}
	}

	var expenseCount int64
	if err := s.db.Model(&models.Expense{}).Where("category_id = ?", category.ID).Count(&expenseCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &CategoryInfo{
		Category:     category,
		ParentName:   parentName,
		ExpenseCount: expenseCount,
	}, nil
}

// nameExists checks sibling-scope name uniqueness, case-insensitive.
func (s *categoryService) nameExists(name string, parentID *string, excludeID string) (bool, error) {
	query := s.db.Model(&models.Category{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func (s *categoryService) getByShortName(code string) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("LOWER(short_name) = ?", strings.ToLower(code)).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// generateShortName derives a code from the alphanumeric prefix of the
// name, probing with an incrementing suffix until unique.
func (s *categoryService) generateShortName(name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "cat"
	}

	candidate := truncateRunes(base, 6)
	suffix := 1
	for {
		existing, err := s.getByShortName(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		prefix := truncateRunes(base, 4)
		if prefix == "" {
			prefix = "cat"
		}
		candidate = fmt.Sprintf("%s%d", prefix, suffix)
		suffix++
	}
}

// isDescendant walks candidate's ancestor chain looking for target. The
// visited set guards against pre-existing cycles in stored data.
func (s *categoryService) isDescendant(candidate, target *models.Category) (bool, error) {
	visited := map[string]bool{}
	current := candidate
	for current != nil {
		if current.ID == target.ID {
			return true, nil
		}
		if visited[current.ID] {
			return false, nil
		}
		visited[current.ID] = true

		if current.ParentID == nil {
			return false, nil
		}
		var parent models.Category
		err := s.db.First(&parent, "id = ?", *current.ParentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		current = &parent
	}
	return false, nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
