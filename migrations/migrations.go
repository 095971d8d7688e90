// Package migrations manages the database schema. Migrations are
// idempotent: each one creates its table only if it is missing, and
// executed migrations are recorded in a dedicated table so the set can be
// re-run safely at every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/acgeoffrey/budget-tracker-api/internal/database"
)

// Migration is a single schema change, tracked so it runs exactly once.
type Migration struct {
	Name        string
	Description string
	TableName   string
	RunSQL      func(ctx context.Context, tx *sql.Tx) error
}

// Migrator runs migrations against a database pool.
type Migrator struct {
	db *database.Pool
}

// NewMigrator creates a new migrator.
func NewMigrator(db *database.Pool) *Migrator {
	return &Migrator{
		db: db,
	}
}

// RunMigrations creates the migrations bookkeeping table and runs every
// migration that has not been executed yet.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Info().Msg("Running database migrations")
	startTime := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	migrationsRun := 0
	for _, migration := range GetMigrations() {
		if _, ok := executed[migration.Name]; ok {
			continue
		}

		exists, err := m.tableExists(ctx, migration.TableName)
		if err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", migration.TableName, err)
		}

		if exists {
			// Table predates the bookkeeping; record without running
			if err := m.recordMigration(ctx, migration.Name, migration.Description); err != nil {
				return fmt.Errorf("failed to record existing migration: %w", err)
			}
			continue
		}

		log.Info().
			Str("migration", migration.Name).
			Str("table", migration.TableName).
			Msg("Running migration")

		if err := m.runMigration(ctx, migration); err != nil {
			return err
		}
		migrationsRun++
	}

	log.Info().
		Int("migrations_run", migrationsRun).
		Dur("duration", time.Since(startTime)).
		Msg("Database migrations completed")

	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS migrations (
            name VARCHAR(255) PRIMARY KEY,
            description TEXT,
            executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) tableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.tables
            WHERE table_schema = 'public' AND table_name = $1
        )
    `

	var exists bool
	if err := m.db.QueryRowContext(ctx, query, tableName).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (m *Migrator) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT name FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executed := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		executed[name] = true
	}

	return executed, rows.Err()
}

func (m *Migrator) recordMigration(ctx context.Context, name, description string) error {
	_, err := m.db.ExecContext(
		ctx,
		"INSERT INTO migrations (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
		name,
		description,
	)
	return err
}

// runMigration executes a migration and records it inside one transaction.
func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := migration.RunSQL(ctx, tx); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}

		_, err := tx.ExecContext(
			ctx,
			"INSERT INTO migrations (name, description) VALUES ($1, $2)",
			migration.Name,
			migration.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
		}

		return nil
	})
}
