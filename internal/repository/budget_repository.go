package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/database"
	"github.com/acgeoffrey/budget-tracker-api/internal/models"
	"github.com/acgeoffrey/budget-tracker-api/internal/query"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// BudgetsResource describes the queryable surface of the budgets table.
// Tags are jsonb and deliberately neither filterable nor sortable.
var BudgetsResource = &query.Resource{
	Table: "budgets",
	Filterable: map[string]bool{
		"title":      true,
		"start_date": true,
		"end_date":   true,
	},
	Sortable: map[string]bool{
		"title":      true,
		"start_date": true,
		"end_date":   true,
		"created_at": true,
	},
	Selectable: []string{
		"budget_id", "title", "start_date", "end_date",
		"tags", "user_id", "created_at", "updated_at",
	},
	SearchField: "title",
	DefaultSort: []query.SortField{{Field: "start_date", Desc: true}},
	OwnerColumn: "user_id",
}

// BudgetRepository defines methods for interacting with budgets.
type BudgetRepository interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id int64, scope query.Scope) (*models.Budget, error)
	Find(ctx context.Context, spec *query.Spec, scope query.Scope) ([]*models.Budget, error)
	Count(ctx context.Context, spec *query.Spec, scope query.Scope) (int64, error)
	Update(ctx context.Context, budget *models.Budget, scope query.Scope) error
	Delete(ctx context.Context, id int64, scope query.Scope) error
}

// PostgresBudgetRepository is a PostgreSQL implementation of
// BudgetRepository.
type PostgresBudgetRepository struct {
	db *database.Pool
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db *database.Pool) BudgetRepository {
	return &PostgresBudgetRepository{
		db: db,
	}
}

// marshalTags encodes budget tags for the jsonb column. A nil slice is
// stored as an empty array, not NULL.
func marshalTags(tags []models.BudgetTag) ([]byte, error) {
	if tags == nil {
		tags = []models.BudgetTag{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal budget tags: %w", err)
	}
	return data, nil
}

// Create adds a new budget.
func (r *PostgresBudgetRepository) Create(ctx context.Context, budget *models.Budget) error {
	startTime := time.Now()

	now := time.Now()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	tagsJSON, err := marshalTags(budget.Tags)
	if err != nil {
		return err
	}

	q := `
        INSERT INTO budgets (title, start_date, end_date, tags, user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING budget_id
    `

	err = r.db.QueryRowContext(
		ctx,
		q,
		budget.Title,
		budget.StartDate,
		budget.EndDate,
		tagsJSON,
		budget.UserID,
		budget.CreatedAt,
		budget.UpdatedAt,
	).Scan(&budget.ID)

	utils.LogDBQuery(
		q,
		[]interface{}{budget.Title, budget.StartDate, budget.EndDate, string(tagsJSON), budget.UserID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return utils.NewNotFoundError("User", budget.UserID)
		}
		return fmt.Errorf("failed to create budget: %w", err)
	}

	log.Debug().
		Int64("budget_id", budget.ID).
		Int64("user_id", budget.UserID).
		Msg("Budget created")

	return nil
}

// scanBudget scans a budget row, decoding the jsonb tags column.
func scanBudget(row interface{ Scan(...interface{}) error }) (*models.Budget, error) {
	budget := &models.Budget{}
	var tagsJSON []byte

	err := row.Scan(
		&budget.ID,
		&budget.Title,
		&budget.StartDate,
		&budget.EndDate,
		&tagsJSON,
		&budget.UserID,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &budget.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal budget tags: %w", err)
		}
	}

	return budget, nil
}

// GetByID retrieves a budget by ID within the given scope.
func (r *PostgresBudgetRepository) GetByID(ctx context.Context, id int64, scope query.Scope) (*models.Budget, error) {
	startTime := time.Now()

	q := `
        SELECT budget_id, title, start_date, end_date, tags, user_id, created_at, updated_at
        FROM budgets
        WHERE budget_id = $1
    `
	args := []interface{}{id}

	if !scope.Admin {
		q += " AND user_id = $2"
		args = append(args, scope.UserID)
	}

	budget, err := scanBudget(r.db.QueryRowContext(ctx, q, args...))

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Budget", id)
		}
		return nil, fmt.Errorf("failed to get budget by ID: %w", err)
	}

	return budget, nil
}

// Find executes a compiled query specification against the budgets table.
// The full column set is always read so the jsonb tags decode correctly;
// projections beyond the default are not meaningful for budgets.
func (r *PostgresBudgetRepository) Find(ctx context.Context, spec *query.Spec, scope query.Scope) ([]*models.Budget, error) {
	startTime := time.Now()

	q, args := spec.ToSQL(BudgetsResource, scope)

	rows, err := r.db.QueryContext(ctx, q, args...)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget rows: %w", err)
	}

	return budgets, nil
}

// Count returns the total number of budgets matching the specification's
// filters, search term and scope.
func (r *PostgresBudgetRepository) Count(ctx context.Context, spec *query.Spec, scope query.Scope) (int64, error) {
	startTime := time.Now()

	q, args := spec.CountSQL(BudgetsResource, scope)

	var count int64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&count)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count budgets: %w", err)
	}

	return count, nil
}

// Update rewrites a budget's mutable fields within the given scope.
func (r *PostgresBudgetRepository) Update(ctx context.Context, budget *models.Budget, scope query.Scope) error {
	startTime := time.Now()

	budget.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(budget.Tags)
	if err != nil {
		return err
	}

	q := `
        UPDATE budgets
        SET title = $1, start_date = $2, end_date = $3, tags = $4, updated_at = $5
        WHERE budget_id = $6
    `
	args := []interface{}{budget.Title, budget.StartDate, budget.EndDate, tagsJSON, budget.UpdatedAt, budget.ID}

	if !scope.Admin {
		q += " AND user_id = $7"
		args = append(args, scope.UserID)
	}

	result, err := r.db.ExecContext(ctx, q, args...)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Budget", budget.ID)
	}

	return nil
}

// Delete removes a budget within the given scope.
func (r *PostgresBudgetRepository) Delete(ctx context.Context, id int64, scope query.Scope) error {
	startTime := time.Now()

	q := "DELETE FROM budgets WHERE budget_id = $1"
	args := []interface{}{id}

	if !scope.Admin {
		q += " AND user_id = $2"
		args = append(args, scope.UserID)
	}

	result, err := r.db.ExecContext(ctx, q, args...)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Budget", id)
	}

	log.Debug().
		Int64("budget_id", id).
		Int64("user_id", scope.UserID).
		Msg("Budget deleted")

	return nil
}
