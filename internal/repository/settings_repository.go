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
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// SettingsRepository defines methods for interacting with per-user
// settings. Every user has exactly one settings row, created at signup.
type SettingsRepository interface {
	Create(ctx context.Context, settings *models.Settings) error
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
	DeleteByUserID(ctx context.Context, userID int64) error
}

// PostgresSettingsRepository is a PostgreSQL implementation of
// SettingsRepository.
type PostgresSettingsRepository struct {
	db *database.Pool
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *database.Pool) SettingsRepository {
	return &PostgresSettingsRepository{
		db: db,
	}
}

// Create stores a settings row. Category lists use PostgreSQL text arrays.
func (r *PostgresSettingsRepository) Create(ctx context.Context, settings *models.Settings) error {
	startTime := time.Now()

	query := `
        INSERT INTO settings (currency, expense_categories, income_categories, user_id)
        VALUES ($1, $2, $3, $4)
        RETURNING settings_id
    `

	err := r.db.QueryRowContext(
		ctx,
		query,
		settings.Currency,
		pq.Array(settings.ExpenseCategories),
		pq.Array(settings.IncomeCategories),
		settings.UserID,
	).Scan(&settings.ID)

	utils.LogDBQuery(
		query,
		[]interface{}{settings.Currency, settings.ExpenseCategories, settings.IncomeCategories, settings.UserID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return utils.NewDuplicateError("Settings", "user_id", settings.UserID)
			case "23503":
				return utils.NewNotFoundError("User", settings.UserID)
			}
		}
		return fmt.Errorf("failed to create settings: %w", err)
	}

	log.Debug().
		Int64("settings_id", settings.ID).
		Int64("user_id", settings.UserID).
		Msg("Settings created")

	return nil
}

// GetByUserID retrieves a user's settings.
func (r *PostgresSettingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, error) {
	startTime := time.Now()

	query := `
        SELECT settings_id, currency, expense_categories, income_categories, user_id
        FROM settings
        WHERE user_id = $1
    `

	settings := &models.Settings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.ID,
		&settings.Currency,
		pq.Array(&settings.ExpenseCategories),
		pq.Array(&settings.IncomeCategories),
		&settings.UserID,
	)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Settings", fmt.Sprintf("user_id=%d", userID))
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// Update rewrites a user's settings row.
func (r *PostgresSettingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	startTime := time.Now()

	query := `
        UPDATE settings
        SET currency = $1, expense_categories = $2, income_categories = $3
        WHERE user_id = $4
    `

	result, err := r.db.ExecContext(
		ctx,
		query,
		settings.Currency,
		pq.Array(settings.ExpenseCategories),
		pq.Array(settings.IncomeCategories),
		settings.UserID,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{settings.Currency, settings.ExpenseCategories, settings.IncomeCategories, settings.UserID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Settings", fmt.Sprintf("user_id=%d", settings.UserID))
	}

	return nil
}

// DeleteByUserID removes a user's settings row. Deleting the user cascades
// here anyway; this exists for explicit cleanup paths.
func (r *PostgresSettingsRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	startTime := time.Now()

	query := "DELETE FROM settings WHERE user_id = $1"
	result, err := r.db.ExecContext(ctx, query, userID)

	utils.LogDBQuery(query, []interface{}{userID}, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Settings", fmt.Sprintf("user_id=%d", userID))
	}

	return nil
}
