package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acgeoffrey/budget-tracker-api/internal/auth"
	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/handlers"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/query"
	"github.com/acgeoffrey/budget-tracker-api/internal/service"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// pagedRecordRepo serves a fixed page of records with a larger total count,
// the way a real table spanning multiple pages would.
type pagedRecordRepo struct {
	page  []*models.Record
	total int64
}

func (r *pagedRecordRepo) Create(_ context.Context, record *models.Record) error {
	record.Normalize()
	return nil
}

func (r *pagedRecordRepo) GetByID(_ context.Context, id int64, _ query.Scope) (*models.Record, error) {
	return nil, utils.NewNotFoundError("Record", id)
}

func (r *pagedRecordRepo) Find(_ context.Context, _ *query.Spec, _ query.Scope) ([]*models.Record, error) {
	return r.page, nil
}

func (r *pagedRecordRepo) Count(_ context.Context, _ *query.Spec, _ query.Scope) (int64, error) {
	return r.total, nil
}

func (r *pagedRecordRepo) Delete(_ context.Context, _ int64, _ query.Scope) error {
	return nil
}

func (r *pagedRecordRepo) CategoryTotals(_ context.Context, _ int64, _ string, _, _ time.Time, _ bool) ([]*models.CategoryTotal, error) {
	return nil, nil
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	user := &models.User{ID: 7, Email: "test@example.com", Role: models.RoleUser}
	return req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, user))
}

func TestRecordHandler_List_MetaCarriesTotal(t *testing.T) {
	page := make([]*models.Record, 10)
	for i := range page {
		page[i] = &models.Record{
			ID:         int64(i + 1),
			Title:      "Coffee",
			RecordType: models.RecordTypeExpense,
			Amount:     4,
			UserID:     7,
		}
	}

	repo := &pagedRecordRepo{page: page, total: 42}
	svc := service.NewRecordService(repo, &config.StatsSettings{InclusiveEndDate: true})
	handler := handlers.NewRecordHandler(svc)

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/api/v1/records?limit=10"))

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool             `json:"success"`
		Data    []*models.Record `json:"data"`
		Meta    struct {
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			Results    int   `json:"results"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data, 10)
	assert.Equal(t, 1, envelope.Meta.Page)
	assert.Equal(t, 10, envelope.Meta.Limit)
	assert.Equal(t, 10, envelope.Meta.Results)
	assert.Equal(t, int64(42), envelope.Meta.Total)
	assert.Equal(t, 5, envelope.Meta.TotalPages)
}

func TestRecordHandler_List_Unauthenticated(t *testing.T) {
	repo := &pagedRecordRepo{}
	svc := service.NewRecordService(repo, &config.StatsSettings{InclusiveEndDate: true})
	handler := handlers.NewRecordHandler(svc)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
