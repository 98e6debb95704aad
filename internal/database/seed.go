package database

import (
	"strings"

	"gorm.io/gorm"

	"gastobot/internal/logger"
	"gastobot/internal/models"
)

type seedCategory struct {
	name  string
	code  string
	emoji string
}

// systemCategories are created on startup and cannot be edited or deleted.
var systemCategories = []seedCategory{
	{"Comida", "comida", "🍽️"},
	{"Transporte", "transp", "🚌"},
	{"Hogar", "hogar", "🏠"},
	{"Salud", "salud", "⚕️"},
	{"Entretenimiento", "entret", "🎮"},
	{"Cuentas", "cuenta", "🧾"},
	{"Otros", "otros", "📦"},
}

// SeedSystemCategories inserts the default category set, skipping any that
// already exist. Safe to run on every startup.
func SeedSystemCategories(db *gorm.DB) error {
	for _, seed := range systemCategories {
		code := seed.code
		emoji := seed.emoji
		category := models.Category{
			Name:      seed.name,
			ShortName: &code,
			Emoji:     &emoji,
			IsSystem:  true,
		}
		err := db.Where("LOWER(name) = ? AND is_system = ?", strings.ToLower(seed.name), true).
			FirstOrCreate(&category).Error
		if err != nil {
			return err
		}
	}
	logger.Get().Infow("system categories seeded", "count", len(systemCategories))
	return nil
}
