package repository

import (
	"context"
	"database/sql"
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

// RecordsResource describes the queryable surface of the records table.
// The owner column is excluded from every allow-list: scoping is applied
// by the compiler, never by client parameters.
var RecordsResource = &query.Resource{
	Table: "records",
	Filterable: map[string]bool{
		"title":       true,
		"record_type": true,
		"amount":      true,
		"category":    true,
		"date":        true,
	},
	Sortable: map[string]bool{
		"title":       true,
		"record_type": true,
		"amount":      true,
		"category":    true,
		"date":        true,
		"created_at":  true,
	},
	Selectable: []string{
		"record_id", "title", "record_type", "amount",
		"category", "notes", "date", "user_id", "created_at", "updated_at",
	},
	SearchField: "title",
	DefaultSort: []query.SortField{{Field: "date", Desc: true}},
	OwnerColumn: "user_id",
}

// RecordRepository defines methods for interacting with income and
// expense records.
type RecordRepository interface {
	Create(ctx context.Context, record *models.Record) error
	GetByID(ctx context.Context, id int64, scope query.Scope) (*models.Record, error)
	Find(ctx context.Context, spec *query.Spec, scope query.Scope) ([]*models.Record, error)
	Count(ctx context.Context, spec *query.Spec, scope query.Scope) (int64, error)
	Delete(ctx context.Context, id int64, scope query.Scope) error
	CategoryTotals(ctx context.Context, userID int64, recordType string, start, end time.Time, inclusiveEnd bool) ([]*models.CategoryTotal, error)
}

// PostgresRecordRepository is a PostgreSQL implementation of
// RecordRepository.
type PostgresRecordRepository struct {
	db *database.Pool
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db *database.Pool) RecordRepository {
	return &PostgresRecordRepository{
		db: db,
	}
}

// Create adds a new record.
func (r *PostgresRecordRepository) Create(ctx context.Context, record *models.Record) error {
	startTime := time.Now()

	record.Normalize()
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `
        INSERT INTO records (title, record_type, amount, category, notes, date, user_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING record_id
    `

	err := r.db.QueryRowContext(
		ctx,
		query,
		record.Title,
		record.RecordType,
		record.Amount,
		record.Category,
		record.Notes,
		record.Date,
		record.UserID,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID)

	utils.LogDBQuery(
		query,
		[]interface{}{record.Title, record.RecordType, record.Amount, record.Category, record.Notes, record.Date, record.UserID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return utils.NewNotFoundError("User", record.UserID)
		}
		return fmt.Errorf("failed to create record: %w", err)
	}

	log.Debug().
		Int64("record_id", record.ID).
		Int64("user_id", record.UserID).
		Str("record_type", record.RecordType).
		Msg("Record created")

	return nil
}

// GetByID retrieves a record by ID within the given scope. A record owned
// by someone else is indistinguishable from a missing one.
func (r *PostgresRecordRepository) GetByID(ctx context.Context, id int64, scope query.Scope) (*models.Record, error) {
	startTime := time.Now()

	q := `
        SELECT record_id, title, record_type, amount, category, notes, date, user_id, created_at, updated_at
        FROM records
        WHERE record_id = $1
    `
	args := []interface{}{id}

	if !scope.Admin {
		q += " AND user_id = $2"
		args = append(args, scope.UserID)
	}

	record := &models.Record{}
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&record.ID,
		&record.Title,
		&record.RecordType,
		&record.Amount,
		&record.Category,
		&record.Notes,
		&record.Date,
		&record.UserID,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Record", id)
		}
		return nil, fmt.Errorf("failed to get record by ID: %w", err)
	}

	return record, nil
}

// Find executes a compiled query specification against the records table.
func (r *PostgresRecordRepository) Find(ctx context.Context, spec *query.Spec, scope query.Scope) ([]*models.Record, error) {
	startTime := time.Now()

	q, args := spec.ToSQL(RecordsResource, scope)

	rows, err := r.db.QueryContext(ctx, q, args...)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, spec.Projection)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Count returns the total number of rows matching the specification's
// filters, search term and scope, ignoring pagination.
func (r *PostgresRecordRepository) Count(ctx context.Context, spec *query.Spec, scope query.Scope) (int64, error) {
	startTime := time.Now()

	q, args := spec.CountSQL(RecordsResource, scope)

	var count int64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&count)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	return count, nil
}

// Delete removes a record within the given scope.
func (r *PostgresRecordRepository) Delete(ctx context.Context, id int64, scope query.Scope) error {
	startTime := time.Now()

	q := "DELETE FROM records WHERE record_id = $1"
	args := []interface{}{id}

	if !scope.Admin {
		q += " AND user_id = $2"
		args = append(args, scope.UserID)
	}

	result, err := r.db.ExecContext(ctx, q, args...)

	utils.LogDBQuery(q, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Record", id)
	}

	log.Debug().
		Int64("record_id", id).
		Int64("user_id", scope.UserID).
		Msg("Record deleted")

	return nil
}

// CategoryTotals aggregates a user's records of one type per category over
// a date window, ordered by total descending. When inclusiveEnd is set the
// window covers the whole end day.
func (r *PostgresRecordRepository) CategoryTotals(ctx context.Context, userID int64, recordType string, start, end time.Time, inclusiveEnd bool) ([]*models.CategoryTotal, error) {
	startTime := time.Now()

	endOp := "<"
	if inclusiveEnd {
		endOp = "<="
	}

	q := fmt.Sprintf(`
        SELECT category, SUM(amount) AS total, COUNT(*) AS count
        FROM records
        WHERE user_id = $1 AND record_type = $2 AND date >= $3 AND date %s $4
        GROUP BY category
        ORDER BY total DESC
    `, endOp)

	rows, err := r.db.QueryContext(ctx, q, userID, recordType, start, end)

	utils.LogDBQuery(q, []interface{}{userID, recordType, start, end}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category totals: %w", err)
	}
	defer rows.Close()

	var totals []*models.CategoryTotal
	for rows.Next() {
		total := &models.CategoryTotal{}
		if err := rows.Scan(&total.Category, &total.Total, &total.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, total)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}

	return totals, nil
}

// scanRecords materializes result rows for an arbitrary projection by
// mapping each projected column to the matching struct field.
func scanRecords(rows *sql.Rows, projection []string) ([]*models.Record, error) {
	var records []*models.Record

	for rows.Next() {
		record := &models.Record{}

		dests := make([]interface{}, 0, len(projection))
		for _, col := range projection {
			switch col {
			case "record_id":
				dests = append(dests, &record.ID)
			case "title":
				dests = append(dests, &record.Title)
			case "record_type":
				dests = append(dests, &record.RecordType)
			case "amount":
				dests = append(dests, &record.Amount)
			case "category":
				dests = append(dests, &record.Category)
			case "notes":
				dests = append(dests, &record.Notes)
			case "date":
				dests = append(dests, &record.Date)
			case "user_id":
				dests = append(dests, &record.UserID)
			case "created_at":
				dests = append(dests, &record.CreatedAt)
			case "updated_at":
				dests = append(dests, &record.UpdatedAt)
			default:
				var discard interface{}
				dests = append(dests, &discard)
			}
		}

		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}

	return records, nil
}
