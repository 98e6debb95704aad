package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "gastobot/internal/errors"
	"gastobot/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// GetOrCreateByPhone resolves the user for a sender id, creating one with
// defaults on the first inbound message.
func (s *userService) GetOrCreateByPhone(phone string) (*models.User, error) {
	if phone == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sender id is required")
	}

	var user models.User
	err := s.db.Where("phone = ?", phone).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user = models.User{
		Phone:           phone,
		Locale:          "es-CL",
		Timezone:        "America/Santiago",
		DefaultCurrency: "CLP",
		IsActive:        true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetByPhone retrieves a user by phone number.
func (s *userService) GetByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// Touch updates the user's last_seen timestamp.
func (s *userService) Touch(user *models.User) error {
	now := time.Now().UTC()
	user.LastSeenAt = &now
	if err := s.db.Model(user).Update("last_seen_at", now).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetDisplayName updates the user's display name.
func (s *userService) SetDisplayName(user *models.User, name string) error {
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Debes indicar un nombre.")
	}
	user.DisplayName = name
	if err := s.db.Model(user).Update("display_name", name).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetCurrency updates the user's default currency.
func (s *userService) SetCurrency(user *models.User, code string) error {
	user.DefaultCurrency = code
	if err := s.db.Model(user).Update("default_currency", code).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetActive activates or deactivates the user's profile.
func (s *userService) SetActive(user *models.User, active bool) error {
	user.IsActive = active
	if err := s.db.Model(user).Update("is_active", active).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetBlocked flips the blocked flag on the user with the given phone.
func (s *userService) SetBlocked(phone string, blocked bool) (*models.User, error) {
	user, err := s.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	user.IsBlocked = blocked
	if err := s.db.Model(user).Update("is_blocked", blocked).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// CountByStatus returns how many users are active and how many blocked.
func (s *userService) CountByStatus() (int64, int64, error) {
	var active, blocked int64
	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&models.User{}).Where("is_blocked = ?", true).Count(&blocked).Error; err != nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return active, blocked, nil
}
