package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/database"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/repository"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// setupUserRepositoryTest creates a new test database connection and mock
func setupUserRepositoryTest(t *testing.T, driver string) (repository.UserRepository, sqlmock.Sqlmock, func()) {
	// Create a new SQL mock database
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	// Create a database pool with the mock database
	dbPool := database.NewPool(db, driver)

	// Create a new repository with the mocked database
	repo := repository.NewUserRepository(dbPool)

	// Return the repository, mock and a cleanup function
	return repo, mock, func() {
		db.Close()
	}
}

func TestUserRepository_Create_Postgres(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverPostgres)
	defer cleanup()

	// Set up test data
	user := &models.AdminUser{
		Email:        "admin@example.com",
		PasswordHash: "hashed",
		Salt:         "salted",
	}

	// PostgreSQL returns the generated ID via RETURNING
	rows := sqlmock.NewRows([]string{"user_id"}).AddRow(7)
	mock.ExpectQuery("INSERT INTO admin_users").
		WithArgs(user.Email, user.PasswordHash, user.Salt, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	// Execute the method being tested
	err := repo.Create(context.Background(), user)

	// Assert the results
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_MySQL(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverMySQL)
	defer cleanup()

	// Set up test data
	user := &models.AdminUser{
		Email:        "admin@example.com",
		PasswordHash: "hashed",
		Salt:         "salted",
	}

	// MySQL exposes the generated ID via LastInsertId
	mock.ExpectExec("INSERT INTO admin_users").
		WithArgs(user.Email, user.PasswordHash, user.Salt, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	// Execute the method being tested
	err := repo.Create(context.Background(), user)

	// Assert the results
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverMySQL)
	defer cleanup()

	// Set up test data
	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "email", "password_hash", "salt", "created_at", "updated_at"}).
		AddRow(1, "admin@example.com", "hashed", "salted", now, now)

	mock.ExpectQuery("SELECT user_id, email, password_hash, salt, created_at, updated_at FROM admin_users WHERE user_id = ?").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	// Execute the method being tested
	user, err := repo.GetByID(context.Background(), 1)

	// Assert the results
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, "hashed", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverMySQL)
	defer cleanup()

	// Mock database response - empty result
	mock.ExpectQuery("SELECT user_id, email, password_hash, salt, created_at, updated_at FROM admin_users WHERE user_id = ?").
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	// Execute the method being tested
	user, err := repo.GetByID(context.Background(), 999)

	// Assert the results
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, utils.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverMySQL)
	defer cleanup()

	// Set up test data
	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "email", "password_hash", "salt", "created_at", "updated_at"}).
		AddRow(1, "admin@example.com", "hashed", "salted", now, now)

	// Email comparison is case-insensitive
	mock.ExpectQuery("SELECT user_id, email, password_hash, salt, created_at, updated_at FROM admin_users WHERE LOWER").
		WithArgs("Admin@Example.com").
		WillReturnRows(rows)

	// Execute the method being tested
	user, err := repo.GetByEmail(context.Background(), "Admin@Example.com")

	// Assert the results
	assert.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverMySQL)
	defer cleanup()

	// Mock database response - empty result
	mock.ExpectQuery("SELECT user_id, email, password_hash, salt, created_at, updated_at FROM admin_users WHERE LOWER").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	// Execute the method being tested
	user, err := repo.GetByEmail(context.Background(), "missing@example.com")

	// Assert the results
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, utils.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Count(t *testing.T) {
	// Set up the test
	repo, mock, cleanup := setupUserRepositoryTest(t, constants.DriverMySQL)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(2)
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(rows)

	// Execute the method being tested
	count, err := repo.Count(context.Background())

	// Assert the results
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
