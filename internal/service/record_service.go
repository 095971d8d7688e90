package service

import (
	"context"
	"net/url"
	"time"

	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/query"
	"github.com/acgeoffrey/budget-tracker-api/internal/repository"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// RecordList is a page of records with the pagination metadata the client
// needs to iterate.
type RecordList struct {
	Records []*models.Record `json:"records"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// CategoryStats is the per-category aggregation for one record type over a
// date window.
type CategoryStats struct {
	RecordType string                  `json:"record_type"`
	StartDate  time.Time               `json:"start_date"`
	EndDate    time.Time               `json:"end_date"`
	Categories []*models.CategoryTotal `json:"categories"`
}

// RecordService handles business logic for income and expense records.
type RecordService struct {
	recordRepo repository.RecordRepository
	statsCfg   *config.StatsSettings
}

// NewRecordService creates a new RecordService.
func NewRecordService(recordRepo repository.RecordRepository, statsCfg *config.StatsSettings) *RecordService {
	return &RecordService{
		recordRepo: recordRepo,
		statsCfg:   statsCfg,
	}
}

// scopeFor derives the query scope from the authenticated user.
func scopeFor(user *models.User) query.Scope {
	return query.Scope{
		UserID: user.ID,
		Admin:  user.Role == models.RoleAdmin,
	}
}

// List builds a query specification from raw request parameters and
// executes it within the caller's scope.
func (s *RecordService) List(ctx context.Context, user *models.User, params url.Values) (*RecordList, error) {
	spec, err := query.Build(params, repository.RecordsResource)
	if err != nil {
		return nil, err
	}

	scope := scopeFor(user)

	records, err := s.recordRepo.Find(ctx, spec, scope)
	if err != nil {
		return nil, err
	}

	total, err := s.recordRepo.Count(ctx, spec, scope)
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []*models.Record{}
	}

	return &RecordList{
		Records: records,
		Total:   total,
		Page:    spec.Page,
		Limit:   spec.Limit,
	}, nil
}

// Create validates and stores a new record for the user.
func (s *RecordService) Create(ctx context.Context, user *models.User, input *models.RecordCreate) (*models.Record, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	record := &models.Record{
		Title:      input.Title,
		RecordType: input.RecordType,
		Amount:     input.Amount,
		Category:   input.Category,
		Notes:      input.Notes,
		UserID:     user.ID,
	}
	if input.Date != nil {
		record.Date = *input.Date
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Get retrieves a single record within the caller's scope.
func (s *RecordService) Get(ctx context.Context, user *models.User, id int64) (*models.Record, error) {
	return s.recordRepo.GetByID(ctx, id, scopeFor(user))
}

// Delete removes a record within the caller's scope.
func (s *RecordService) Delete(ctx context.Context, user *models.User, id int64) error {
	return s.recordRepo.Delete(ctx, id, scopeFor(user))
}

// Stats aggregates the user's records of one type per category over the
// given window. Whether the end date is inclusive is a deployment setting.
func (s *RecordService) Stats(ctx context.Context, user *models.User, recordType string, start, end time.Time) (*CategoryStats, error) {
	if recordType != models.RecordTypeIncome && recordType != models.RecordTypeExpense {
		return nil, utils.NewValidationError("record_type", "Record type must be 'income' or 'expense'")
	}
	if end.Before(start) {
		return nil, utils.NewValidationError("end_date", "End date must not be before start date")
	}

	totals, err := s.recordRepo.CategoryTotals(ctx, user.ID, recordType, start, end, s.statsCfg.InclusiveEndDate)
	if err != nil {
		return nil, err
	}

	if totals == nil {
		totals = []*models.CategoryTotal{}
	}

	return &CategoryStats{
		RecordType: recordType,
		StartDate:  start,
		EndDate:    end,
		Categories: totals,
	}, nil
}
