package service

import (
	"context"

	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/repository"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// UserService handles user profile and settings operations.
type UserService struct {
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, settingsRepo repository.SettingsRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
	}
}

// GetProfile returns the sanitized profile of a user.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdateProfile updates a user's mutable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input *models.UserUpdate) (*models.User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitize(), nil
}

// DeleteAccount removes a user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	return s.userRepo.Delete(ctx, userID)
}

// ListUsers returns all users, sanitized. Admin-only.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*models.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitize())
	}

	return sanitized, nil
}

// GetSettings returns a user's settings, falling back to the defaults if
// the settings row was never provisioned.
func (s *UserService) GetSettings(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return models.DefaultSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

// UpdateSettings applies a partial settings update.
func (s *UserService) UpdateSettings(ctx context.Context, userID int64, input *models.SettingsUpdate) (*models.Settings, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !utils.IsNotFoundError(err) {
			return nil, err
		}
		settings = models.DefaultSettings(userID)
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, err
		}
	}

	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if input.ExpenseCategories != nil {
		settings.ExpenseCategories = input.ExpenseCategories
	}
	if input.IncomeCategories != nil {
		settings.IncomeCategories = input.IncomeCategories
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
