package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/database"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// SettingsRepository defines methods for interacting with stored setting rows
type SettingsRepository interface {
	GetByCategory(ctx context.Context, category registry.Category) ([]*models.Setting, error)
	GetAll(ctx context.Context) ([]*models.Setting, error)
	UpsertMany(ctx context.Context, category registry.Category, values map[string]string) error
	ResetCategory(ctx context.Context, category registry.Category) (int64, error)
}

// SQLSettingsRepository is a database/sql implementation of SettingsRepository
type SQLSettingsRepository struct {
	db *database.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *database.Pool) SettingsRepository {
	return &SQLSettingsRepository{
		db: db,
	}
}

// GetByCategory retrieves all stored rows for one category
func (r *SQLSettingsRepository) GetByCategory(ctx context.Context, category registry.Category) ([]*models.Setting, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := r.db.Rebind(`
        SELECT setting_id, category, setting_key, value, updated_at
        FROM settings
        WHERE category = ?
        ORDER BY setting_key
    `)

	// Execute the query
	rows, err := r.db.QueryContext(ctx, query, string(category))

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{string(category)},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get settings by category: %w", err)
	}
	defer rows.Close()

	return scanSettings(rows)
}

// GetAll retrieves every stored setting row
func (r *SQLSettingsRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        SELECT setting_id, category, setting_key, value, updated_at
        FROM settings
        ORDER BY category, setting_key
    `

	// Execute the query
	rows, err := r.db.QueryContext(ctx, query)

	// Log the query execution
	utils.LogDBQuery(
		query,
		nil,
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	return scanSettings(rows)
}

// UpsertMany writes a set of values for one category inside a single
// transaction, so a failed write never leaves the category half-updated
func (r *SQLSettingsRepository) UpsertMany(ctx context.Context, category registry.Category, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	// PostgreSQL and MySQL spell the upsert differently
	var query string
	if r.db.Driver() == constants.DriverPostgres {
		query = r.db.Rebind(`
        INSERT INTO settings (category, setting_key, value, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (category, setting_key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `)
	} else {
		query = `
        INSERT INTO settings (category, setting_key, value, updated_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)
    `
	}

	err := r.db.Transaction(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		for key, value := range values {
			startTime := time.Now()
			_, err := tx.ExecContext(ctx, query, string(category), key, value, now)
			utils.LogDBQuery(
				query,
				[]interface{}{string(category), key, value, now},
				time.Since(startTime),
				err,
			)
			if err != nil {
				return utils.ParseError(fmt.Errorf("failed to upsert setting %s.%s: %w", category, key, err))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("category", string(category)).
		Int("field_count", len(values)).
		Msg("Settings upserted")

	return nil
}

// ResetCategory deletes every stored row for a category, returning the
// number of rows removed. Deleting nothing is not an error: a category
// with no rows is already at its defaults.
func (r *SQLSettingsRepository) ResetCategory(ctx context.Context, category registry.Category) (int64, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := r.db.Rebind(`DELETE FROM settings WHERE category = ?`)

	// Execute the query
	result, err := r.db.ExecContext(ctx, query, string(category))

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{string(category)},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to reset category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info().
		Str("category", string(category)).
		Int64("rows_removed", rowsAffected).
		Msg("Category reset to defaults")

	return rowsAffected, nil
}

// scanSettings reads setting rows from a result set
func scanSettings(rows *sql.Rows) ([]*models.Setting, error) {
	var settings []*models.Setting
	for rows.Next() {
		s := &models.Setting{}
		if err := rows.Scan(&s.ID, &s.Category, &s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate setting rows: %w", err)
	}
	return settings, nil
}
