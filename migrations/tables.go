package migrations

import (
	"context"
	"database/sql"

	"github.com/dotmac-platform/settings-service/internal/constants"
)

// createAdminUsersTable creates the admin_users table.
// This table stores the administrator accounts that may change settings.
//
// Parameters:
//   - driver: The SQL driver name, which selects the DDL dialect
//
// Returns:
//   - Migration: A migration that creates the admin_users table
func createAdminUsersTable(driver string) Migration {
	return Migration{
		Name:        "create_admin_users_table",
		Description: "Creates the admin_users table",
		TableName:   "admin_users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS admin_users (
					user_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
					email VARCHAR(255) NOT NULL UNIQUE,
					password_hash VARCHAR(255) NOT NULL,
					salt VARCHAR(255) NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)
			`
			if driver == constants.DriverMySQL {
				query = `
					CREATE TABLE IF NOT EXISTS admin_users (
						user_id BIGINT PRIMARY KEY AUTO_INCREMENT,
						email VARCHAR(255) NOT NULL UNIQUE,
						password_hash VARCHAR(255) NOT NULL,
						salt VARCHAR(255) NOT NULL,
						created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
					)
				`
			}

			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createSettingsTable creates the settings table.
// Each row is one setting value overriding the built-in default for its
// category. The (category, setting_key) pair is unique so upserts can
// target a single setting.
//
// Parameters:
//   - driver: The SQL driver name, which selects the DDL dialect
//
// Returns:
//   - Migration: A migration that creates the settings table
func createSettingsTable(driver string) Migration {
	return Migration{
		Name:        "create_settings_table",
		Description: "Creates the settings table",
		TableName:   "settings",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS settings (
					setting_id BIGINT PRIMARY KEY GENERATED ALWAYS AS IDENTITY,
					category VARCHAR(50) NOT NULL,
					setting_key VARCHAR(100) NOT NULL,
					value TEXT NOT NULL,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT uq_settings_category_key UNIQUE (category, setting_key)
				)
			`
			if driver == constants.DriverMySQL {
				query = `
					CREATE TABLE IF NOT EXISTS settings (
						setting_id BIGINT PRIMARY KEY AUTO_INCREMENT,
						category VARCHAR(50) NOT NULL,
						setting_key VARCHAR(100) NOT NULL,
						value TEXT NOT NULL,
						updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
						CONSTRAINT uq_settings_category_key UNIQUE (category, setting_key)
					)
				`
			}

			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			// Category lookups are the hot path for merged reads
			_, err := tx.ExecContext(ctx, `CREATE INDEX idx_settings_category ON settings(category)`)
			return err
		},
	}
}

// createSettingsAuditLogTable creates the settings_audit_log table.
// The audit log is append-only; rows are never updated, only inserted and
// eventually pruned by the retention task.
//
// Parameters:
//   - driver: The SQL driver name, which selects the DDL dialect
//
// Returns:
//   - Migration: A migration that creates the settings_audit_log table
func createSettingsAuditLogTable(driver string) Migration {
	return Migration{
		Name:        "create_settings_audit_log_table",
		Description: "Creates the settings_audit_log table",
		TableName:   "settings_audit_log",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			// The same DDL is valid in both dialects
			_ = driver
			query := `
				CREATE TABLE IF NOT EXISTS settings_audit_log (
					entry_id VARCHAR(36) PRIMARY KEY,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					user_email VARCHAR(255) NOT NULL,
					category VARCHAR(50) NOT NULL,
					action VARCHAR(20) NOT NULL,
					changes TEXT NOT NULL,
					reason TEXT,
					ip_address VARCHAR(50),
					user_agent VARCHAR(255)
				)
			`

			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			// Listing filters by category and orders by recency; pruning
			// scans by age
			indexes := []string{
				`CREATE INDEX idx_audit_category ON settings_audit_log(category)`,
				`CREATE INDEX idx_audit_created_at ON settings_audit_log(created_at)`,
			}

			for _, idx := range indexes {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
