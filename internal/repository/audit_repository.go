package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/database"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// AuditRepository defines methods for interacting with the audit trail.
// The trail is append-only: entries are created and read, never updated
// and never deleted.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	GetByID(ctx context.Context, entryID string) (*models.AuditLogEntry, error)
	List(ctx context.Context, category registry.Category, page, pageSize int) ([]*models.AuditLogEntry, int, error)
}

// SQLAuditRepository is a database/sql implementation of AuditRepository
type SQLAuditRepository struct {
	db *database.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *database.Pool) AuditRepository {
	return &SQLAuditRepository{
		db: db,
	}
}

// Create appends a new entry to the audit trail
func (r *SQLAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	// Start query timer
	startTime := time.Now()

	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to encode audit changes: %w", err)
	}

	// Define the query
	query := r.db.Rebind(`
        INSERT INTO settings_audit_log (entry_id, created_at, user_email, category, action, changes, reason, ip_address, user_agent)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)

	// Execute the query
	_, err = r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Timestamp,
		entry.UserEmail,
		entry.Category,
		string(entry.Action),
		string(changes),
		entry.Reason,
		entry.IPAddress,
		entry.UserAgent,
	)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{entry.ID, entry.Timestamp, entry.UserEmail, entry.Category, entry.Action},
		time.Since(startTime),
		err,
	)

	if err != nil {
		// Check for unique constraint violations
		if utils.IsDuplicateKeyError(err) {
			return utils.NewDuplicateError("AuditLogEntry", "entry_id", entry.ID)
		}
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	log.Info().
		Str("entry_id", entry.ID).
		Str("category", entry.Category).
		Str("action", string(entry.Action)).
		Int("change_count", len(entry.Changes)).
		Msg("Audit entry recorded")

	return nil
}

// GetByID retrieves a single audit entry by its identifier
func (r *SQLAuditRepository) GetByID(ctx context.Context, entryID string) (*models.AuditLogEntry, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := r.db.Rebind(`
        SELECT entry_id, created_at, user_email, category, action, changes, reason, ip_address, user_agent
        FROM settings_audit_log
        WHERE entry_id = ?
    `)

	// Execute the query
	entry, err := scanAuditEntry(r.db.QueryRowContext(ctx, query, entryID))

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{entryID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("AuditLogEntry", entryID)
		}
		return nil, fmt.Errorf("failed to get audit entry by ID: %w", err)
	}

	return entry, nil
}

// List retrieves a page of audit entries, newest first. An empty category
// returns entries across all categories.
func (r *SQLAuditRepository) List(ctx context.Context, category registry.Category, page, pageSize int) ([]*models.AuditLogEntry, int, error) {
	offset := (page - 1) * pageSize

	// Count matching entries for pagination metadata
	countQuery := `SELECT COUNT(*) FROM settings_audit_log`
	listQuery := `
        SELECT entry_id, created_at, user_email, category, action, changes, reason, ip_address, user_agent
        FROM settings_audit_log
    `

	var countArgs, listArgs []interface{}
	if category != "" {
		countQuery += ` WHERE category = ?`
		listQuery += ` WHERE category = ?`
		countArgs = append(countArgs, string(category))
		listArgs = append(listArgs, string(category))
	}
	listQuery += `
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `
	listArgs = append(listArgs, pageSize, offset)

	countQuery = r.db.Rebind(countQuery)
	listQuery = r.db.Rebind(listQuery)

	// Count total entries
	startTime := time.Now()
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total)
	utils.LogDBQuery(countQuery, countArgs, time.Since(startTime), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	// Fetch the requested page
	startTime = time.Now()
	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	utils.LogDBQuery(listQuery, listArgs, time.Since(startTime), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLogEntry
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, total, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan logic
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAuditEntry reads one audit row, decoding the JSON change set
func scanAuditEntry(row rowScanner) (*models.AuditLogEntry, error) {
	entry := &models.AuditLogEntry{}
	var changes string

	err := row.Scan(
		&entry.ID,
		&entry.Timestamp,
		&entry.UserEmail,
		&entry.Category,
		&entry.Action,
		&changes,
		&entry.Reason,
		&entry.IPAddress,
		&entry.UserAgent,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(changes), &entry.Changes); err != nil {
		return nil, fmt.Errorf("failed to decode audit changes: %w", err)
	}

	return entry, nil
}
