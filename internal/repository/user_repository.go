package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/database"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// UserRepository defines methods for interacting with administrator accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByID(ctx context.Context, id int64) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Count(ctx context.Context) (int, error)
}

// SQLUserRepository is a database/sql implementation of UserRepository
type SQLUserRepository struct {
	db *database.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Pool) UserRepository {
	return &SQLUserRepository{
		db: db,
	}
}

// Create adds a new administrator account to the database
func (r *SQLUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	// Start query timer
	startTime := time.Now()

	// Set created/updated timestamps
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	var err error
	if r.db.Driver() == constants.DriverPostgres {
		// PostgreSQL returns the generated ID via RETURNING
		query := r.db.Rebind(`
        INSERT INTO admin_users (email, password_hash, salt, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING user_id
    `)
		err = r.db.QueryRowContext(
			ctx,
			query,
			user.Email,
			user.PasswordHash,
			user.Salt,
			user.CreatedAt,
			user.UpdatedAt,
		).Scan(&user.ID)

		utils.LogDBQuery(
			query,
			[]interface{}{user.Email, "[REDACTED]", "[REDACTED]", user.CreatedAt, user.UpdatedAt},
			time.Since(startTime),
			err,
		)
	} else {
		// MySQL exposes the generated ID via LastInsertId
		query := `
        INSERT INTO admin_users (email, password_hash, salt, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
    `
		var result sql.Result
		result, err = r.db.ExecContext(
			ctx,
			query,
			user.Email,
			user.PasswordHash,
			user.Salt,
			user.CreatedAt,
			user.UpdatedAt,
		)

		utils.LogDBQuery(
			query,
			[]interface{}{user.Email, "[REDACTED]", "[REDACTED]", user.CreatedAt, user.UpdatedAt},
			time.Since(startTime),
			err,
		)

		if err == nil {
			user.ID, err = result.LastInsertId()
		}
	}

	if err != nil {
		// Check for unique constraint violations
		if utils.IsDuplicateKeyError(err) {
			return utils.NewDuplicateError("AdminUser", "email", user.Email)
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("email", utils.MaskEmail(user.Email)).
		Msg("Admin user created")

	return nil
}

// GetByID retrieves an administrator account by ID
func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := r.db.Rebind(`
        SELECT user_id, email, password_hash, salt, created_at, updated_at
        FROM admin_users
        WHERE user_id = ?
    `)

	// Execute the query
	user := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("AdminUser", id)
		}
		return nil, fmt.Errorf("failed to get admin user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves an administrator account by email
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query with case-insensitive comparison
	query := r.db.Rebind(`
        SELECT user_id, email, password_hash, salt, created_at, updated_at
        FROM admin_users
        WHERE LOWER(email) = LOWER(?)
    `)

	// Execute the query
	user := &models.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{email},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("AdminUser", fmt.Sprintf("email=%s", email))
		}
		return nil, fmt.Errorf("failed to get admin user by email: %w", err)
	}

	return user, nil
}

// Count returns the number of administrator accounts, used by the seeding
// workflow to decide whether a bootstrap admin is needed
func (r *SQLUserRepository) Count(ctx context.Context) (int, error) {
	// Start query timer
	startTime := time.Now()

	query := `SELECT COUNT(*) FROM admin_users`

	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)

	// Log the query execution
	utils.LogDBQuery(
		query,
		nil,
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}

	return count, nil
}
