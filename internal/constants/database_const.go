// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names and column names. These constants ensure consistent and
// correct database access patterns throughout the application, reducing the risk
// of SQL errors and simplifying database schema changes.
package constants

// Table Names define the names of database tables used in the application.
// Using these constants instead of string literals ensures consistency
// and makes database schema changes easier to implement.
const (
	// TableAdminUsers is the name of the table storing administrator accounts.
	TableAdminUsers = "admin_users"

	// TableSettings is the name of the table storing configuration values,
	// one row per (category, key) pair.
	TableSettings = "settings"

	// TableAuditLog is the name of the append-only table storing configuration
	// change history. Rows are inserted, never updated or deleted.
	TableAuditLog = "settings_audit_log"
)

// Common Column Names define frequently used database column names.
// These constants ensure consistent column name usage in SQL queries.
const (
	// ColumnUserID is the column name for administrator identifiers.
	ColumnUserID = "user_id"

	// ColumnEmail is the column name for administrator email addresses.
	ColumnEmail = "email"

	// ColumnPasswordHash is the column name for hashed passwords.
	ColumnPasswordHash = "password_hash"

	// ColumnSalt is the column name for password salts.
	ColumnSalt = "salt"

	// ColumnCategory is the column name for settings category identifiers.
	ColumnCategory = "category"

	// ColumnSettingKey is the column name for setting field names.
	ColumnSettingKey = "setting_key"

	// ColumnValue is the column name for JSON-encoded setting values.
	ColumnValue = "value"

	// ColumnEntryID is the column name for audit log entry identifiers.
	ColumnEntryID = "entry_id"

	// ColumnAction is the column name for audit actions.
	ColumnAction = "action"

	// ColumnChanges is the column name for JSON-encoded field diffs.
	ColumnChanges = "changes"

	// ColumnCreatedAt is the column name for creation timestamps.
	ColumnCreatedAt = "created_at"

	// ColumnUpdatedAt is the column name for modification timestamps.
	ColumnUpdatedAt = "updated_at"
)

// Supported database drivers.
const (
	// DriverPostgres selects the PostgreSQL driver (lib/pq).
	DriverPostgres = "postgres"

	// DriverMySQL selects the MySQL driver (go-sql-driver/mysql).
	DriverMySQL = "mysql"
)

// PostgreSQL connection string parameters.
const (
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)
