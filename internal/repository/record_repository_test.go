package repository_test

import (
	"context"
	"database/sql"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acgeoffrey/budget-tracker-api/internal/database"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/query"
	"github.com/acgeoffrey/budget-tracker-api/internal/repository"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

func setupRecordRepositoryTest(t *testing.T) (repository.RecordRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := repository.NewRecordRepository(&database.Pool{DB: db})

	return repo, mock, func() {
		db.Close()
	}
}

func recordRows(records ...*models.Record) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"record_id", "title", "record_type", "amount", "category",
		"notes", "date", "user_id", "created_at", "updated_at",
	})
	for _, r := range records {
		rows.AddRow(r.ID, r.Title, r.RecordType, r.Amount, r.Category, r.Notes, r.Date, r.UserID, r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func TestRecordRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	record := &models.Record{
		Title:      "Groceries",
		RecordType: models.RecordTypeExpense,
		Amount:     54.20,
		Category:   "Food",
		UserID:     7,
	}

	mock.ExpectQuery("INSERT INTO records").
		WithArgs("Groceries", models.RecordTypeExpense, 54.20, "food", "", sqlmock.AnyArg(), int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"record_id"}).AddRow(3))

	err := repo.Create(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, int64(3), record.ID)
	assert.Equal(t, "food", record.Category) // normalized to lowercase
	assert.False(t, record.Date.IsZero())    // zero date defaults to now
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Create_DefaultCategory(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	record := &models.Record{
		Title:      "Salary",
		RecordType: models.RecordTypeIncome,
		Amount:     5000,
		UserID:     7,
	}

	mock.ExpectQuery("INSERT INTO records").
		WithArgs("Salary", models.RecordTypeIncome, float64(5000), "others", "", sqlmock.AnyArg(), int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"record_id"}).AddRow(4))

	err := repo.Create(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, record.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_GetByID_Scoped(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	now := time.Now()
	expected := &models.Record{
		ID: 3, Title: "Groceries", RecordType: models.RecordTypeExpense,
		Amount: 54.20, Category: "food", Date: now, UserID: 7,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT (.+) FROM records(.+)record_id = \\$1 AND user_id = \\$2").
		WithArgs(int64(3), int64(7)).
		WillReturnRows(recordRows(expected))

	record, err := repo.GetByID(context.Background(), 3, query.Scope{UserID: 7})

	require.NoError(t, err)
	assert.Equal(t, int64(3), record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_GetByID_OtherUsersRecordHidden(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM records(.+)record_id = \\$1 AND user_id = \\$2").
		WithArgs(int64(3), int64(8)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 3, query.Scope{UserID: 8})

	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Find(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	params := url.Values{}
	params.Set("category", "food")
	params.Set("limit", "10")
	params.Set("page", "2")

	spec, err := query.Build(params, repository.RecordsResource)
	require.NoError(t, err)

	now := time.Now()
	expected := &models.Record{
		ID: 1, Title: "Groceries", RecordType: models.RecordTypeExpense,
		Amount: 54.20, Category: "food", Date: now, UserID: 7,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery("SELECT (.+) FROM records WHERE user_id = \\$1 AND category = \\$2(.+)LIMIT \\$3 OFFSET \\$4").
		WithArgs(int64(7), "food", 10, 10).
		WillReturnRows(recordRows(expected))

	records, err := repo.Find(context.Background(), spec, query.Scope{UserID: 7})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Groceries", records[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Count(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	spec, err := query.Build(url.Values{}, repository.RecordsResource)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records WHERE user_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.Count(context.Background(), spec, query.Scope{UserID: 7})

	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Delete_Scoped(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM records WHERE record_id = \\$1 AND user_id = \\$2").
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), 3, query.Scope{UserID: 7})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Delete_NotOwned(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM records WHERE record_id = \\$1 AND user_id = \\$2").
		WithArgs(int64(3), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 3, query.Scope{UserID: 8})

	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_CategoryTotals(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"category", "total", "count"}).
		AddRow("food", 320.50, 8).
		AddRow("transportation", 120.00, 3)

	mock.ExpectQuery("SELECT category, SUM\\(amount\\)(.+)date >= \\$3 AND date <= \\$4").
		WithArgs(int64(7), models.RecordTypeExpense, start, end).
		WillReturnRows(rows)

	totals, err := repo.CategoryTotals(context.Background(), 7, models.RecordTypeExpense, start, end, true)

	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "food", totals[0].Category)
	assert.Equal(t, 320.50, totals[0].Total)
	assert.Equal(t, int64(8), totals[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_CategoryTotals_ExclusiveEnd(t *testing.T) {
	repo, mock, cleanup := setupRecordRepositoryTest(t)
	defer cleanup()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT category, SUM\\(amount\\)(.+)date >= \\$3 AND date < \\$4").
		WithArgs(int64(7), models.RecordTypeExpense, start, end).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total", "count"}))

	totals, err := repo.CategoryTotals(context.Background(), 7, models.RecordTypeExpense, start, end, false)

	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}
