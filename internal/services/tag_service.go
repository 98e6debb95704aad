package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
)

// tagService handles the shared tag store. Tag names are normalized to
// lowercase at this boundary so every variant of @Trabajo resolves to the
// same row.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

// GetOrCreateMany resolves each name to its tag row, creating missing
// ones. Input order is preserved; duplicate names map to the same tag once.
func (s *tagService) GetOrCreateMany(names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = normalizeTag(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, _, err := s.getOrCreate(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// List returns every tag, alphabetically.
func (s *tagService) List() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("name").Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// ListForUser returns the distinct tags attached to the user's expenses,
// alphabetically.
func (s *tagService) ListForUser(userID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Distinct("tags.*").
		Joins("JOIN expense_tags ON expense_tags.tag_id = tags.id").
		Joins("JOIN expenses ON expenses.id = expense_tags.expense_id").
		Where("expenses.user_id = ?", userID).
		Order("tags.name").
		Find(&tags).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// Create adds a tag explicitly. The bool reports whether a new row was
// created, so the caller can tell "creada" from "ya existía".
func (s *tagService) Create(name string) (*models.Tag, bool, error) {
	name = normalizeTag(name)
	if name == "" {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "Debes indicar el nombre de la etiqueta.")
	}
	return s.getOrCreate(name)
}

func (s *tagService) getOrCreate(name string) (*models.Tag, bool, error) {
	var tag models.Tag
	err := s.db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tag = models.Tag{Name: name}
	if err := s.db.Create(&tag).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, true, nil
}

func normalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "@")))
}
