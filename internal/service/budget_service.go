package service

import (
	"context"
	"net/url"

	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/query"
	"github.com/acgeoffrey/budget-tracker-api/internal/repository"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// BudgetList is a page of budgets with pagination metadata.
type BudgetList struct {
	Budgets []*models.Budget `json:"budgets"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// BudgetService handles business logic for budgets.
type BudgetService struct {
	budgetRepo repository.BudgetRepository
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo repository.BudgetRepository) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
	}
}

// List builds a query specification from raw request parameters and
// executes it within the caller's scope.
func (s *BudgetService) List(ctx context.Context, user *models.User, params url.Values) (*BudgetList, error) {
	spec, err := query.Build(params, repository.BudgetsResource)
	if err != nil {
		return nil, err
	}

	scope := scopeFor(user)

	budgets, err := s.budgetRepo.Find(ctx, spec, scope)
	if err != nil {
		return nil, err
	}

	total, err := s.budgetRepo.Count(ctx, spec, scope)
	if err != nil {
		return nil, err
	}

	if budgets == nil {
		budgets = []*models.Budget{}
	}

	return &BudgetList{
		Budgets: budgets,
		Total:   total,
		Page:    spec.Page,
		Limit:   spec.Limit,
	}, nil
}

// Create validates and stores a new budget for the user.
func (s *BudgetService) Create(ctx context.Context, user *models.User, input *models.BudgetCreate) (*models.Budget, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		Title:     input.Title,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Tags:      input.Tags,
		UserID:    user.ID,
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}

	return budget, nil
}

// Get retrieves a single budget within the caller's scope.
func (s *BudgetService) Get(ctx context.Context, user *models.User, id int64) (*models.Budget, error) {
	return s.budgetRepo.GetByID(ctx, id, scopeFor(user))
}

// Update replaces a budget's mutable fields within the caller's scope.
func (s *BudgetService) Update(ctx context.Context, user *models.User, id int64, input *models.BudgetCreate) (*models.Budget, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	scope := scopeFor(user)

	budget, err := s.budgetRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	budget.Title = input.Title
	budget.StartDate = input.StartDate
	budget.EndDate = input.EndDate
	budget.Tags = input.Tags

	if err := s.budgetRepo.Update(ctx, budget, scope); err != nil {
		return nil, err
	}

	return budget, nil
}

// Delete removes a budget within the caller's scope.
func (s *BudgetService) Delete(ctx context.Context, user *models.User, id int64) error {
	return s.budgetRepo.Delete(ctx, id, scopeFor(user))
}
