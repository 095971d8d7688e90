package migrations

import (
	"context"
	"database/sql"
)

// GetMigrations returns all migrations in execution order. Tables with
// foreign keys come after the tables they reference.
func GetMigrations() []Migration {
	return []Migration{
		createUsersTable(),
		createRecordsTable(),
		createBudgetsTable(),
		createSettingsTable(),
	}
}

// createUsersTable creates the users table. The reset token columns are
// either both set or both NULL; emails are unique case-insensitively.
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS users (
					user_id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					salt VARCHAR(255) NOT NULL,
					role VARCHAR(20) NOT NULL DEFAULT 'user',
					password_changed_at TIMESTAMP,
					password_reset_token_hash VARCHAR(64),
					password_reset_expires_at TIMESTAMP,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT chk_reset_token CHECK (
						(password_reset_token_hash IS NULL) = (password_reset_expires_at IS NULL)
					)
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email));
				CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (password_reset_token_hash)
					WHERE password_reset_token_hash IS NOT NULL;
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createRecordsTable creates the records table.
func createRecordsTable() Migration {
	return Migration{
		Name:        "create_records_table",
		Description: "Creates the income and expense records table",
		TableName:   "records",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS records (
					record_id BIGSERIAL PRIMARY KEY,
					title VARCHAR(200) NOT NULL,
					record_type VARCHAR(10) NOT NULL CHECK (record_type IN ('income', 'expense')),
					amount NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
					category VARCHAR(100) NOT NULL DEFAULT 'others',
					notes TEXT NOT NULL DEFAULT '',
					date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					user_id BIGINT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_records_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
				);
				CREATE INDEX IF NOT EXISTS idx_records_user_id ON records (user_id);
				CREATE INDEX IF NOT EXISTS idx_records_user_date ON records (user_id, date);
				CREATE INDEX IF NOT EXISTS idx_records_user_category ON records (user_id, category);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createBudgetsTable creates the budgets table. Tags live in a jsonb
// column since they are only read and written as a whole.
func createBudgetsTable() Migration {
	return Migration{
		Name:        "create_budgets_table",
		Description: "Creates the budgets table",
		TableName:   "budgets",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS budgets (
					budget_id BIGSERIAL PRIMARY KEY,
					title VARCHAR(200) NOT NULL,
					start_date TIMESTAMP NOT NULL,
					end_date TIMESTAMP NOT NULL,
					tags JSONB NOT NULL DEFAULT '[]',
					user_id BIGINT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_budgets_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
					CONSTRAINT chk_budget_dates CHECK (end_date > start_date)
				);
				CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets (user_id);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createSettingsTable creates the settings table, one row per user.
func createSettingsTable() Migration {
	return Migration{
		Name:        "create_settings_table",
		Description: "Creates the per-user settings table",
		TableName:   "settings",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS settings (
					settings_id BIGSERIAL PRIMARY KEY,
					currency VARCHAR(3) NOT NULL DEFAULT 'INR',
					expense_categories TEXT[] NOT NULL DEFAULT '{}',
					income_categories TEXT[] NOT NULL DEFAULT '{}',
					user_id BIGINT NOT NULL,
					CONSTRAINT fk_settings_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
					CONSTRAINT idx_settings_user_id UNIQUE (user_id)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
