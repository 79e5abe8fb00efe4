package scripts

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/dotmac-platform/settings-service/internal/config"
	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/database"
)

// createMockDB creates a mock database for testing
func createMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// createMockDBAndTx creates a mock database and transaction for testing
func createMockDBAndTx(t *testing.T) (*sql.DB, *sql.Tx, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	cleanup := func() {
		tx.Rollback()
		db.Close()
	}

	return db, tx, mock, cleanup
}

// testConfig returns a config with bootstrap credentials and fast hashing
// parameters suitable for tests.
func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Bootstrap: config.BootstrapSettings{
			AdminEmail:    "admin@example.com",
			AdminPassword: "bootstrap-secret",
		},
		PasswordHash: config.HashSettings{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

func TestNewSeeder(t *testing.T) {
	db, _, cleanup := createMockDB(t)
	defer cleanup()

	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	assert.NotNil(t, seeder)
	assert.Equal(t, pool, seeder.db)
}

func TestCreateSeedsTable(t *testing.T) {
	db, mock, cleanup := createMockDB(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS seeds").
		WillReturnResult(sqlmock.NewResult(0, 0))

	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	ctx := context.Background()
	err := seeder.createSeedsTable(ctx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExecutedSeeds(t *testing.T) {
	db, mock, cleanup := createMockDB(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectQuery("SELECT name FROM seeds").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("bootstrap_admin"))

	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	seeds, err := seeder.getExecutedSeeds(ctx)

	assert.NoError(t, err)
	assert.NotNil(t, seeds)
	assert.True(t, seeds["bootstrap_admin"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSeed(t *testing.T) {
	db, mock, cleanup := createMockDB(t)
	defer cleanup()

	ctx := context.Background()
	seedName := "test_seed"

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seeds").
		WithArgs(seedName).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	seedFn := func(ctx context.Context, tx *sql.Tx) error {
		return nil
	}

	err := seeder.runSeed(ctx, seedName, seedFn)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedBootstrapAdmin(t *testing.T) {
	_, tx, mock, cleanup := createMockDBAndTx(t)
	defer cleanup()

	ctx := context.Background()

	// Empty admin_users table triggers the bootstrap insert
	mock.ExpectQuery("SELECT COUNT.*FROM admin_users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectExec("INSERT INTO admin_users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	db, _, _ := createMockDB(t)
	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	err := seeder.seedBootstrapAdmin(ctx, tx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedBootstrapAdminWithExistingAccounts(t *testing.T) {
	_, tx, mock, cleanup := createMockDBAndTx(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT.*FROM admin_users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	// No insertions should be attempted

	db, _, _ := createMockDB(t)
	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	err := seeder.seedBootstrapAdmin(ctx, tx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedBootstrapAdminWithoutCredentials(t *testing.T) {
	_, tx, mock, cleanup := createMockDBAndTx(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT.*FROM admin_users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// No credentials configured means nothing to insert

	db, _, _ := createMockDB(t)
	pool := database.NewPool(db, constants.DriverMySQL)
	cfg := testConfig()
	cfg.Bootstrap = config.BootstrapSettings{}
	seeder := NewSeeder(pool, cfg)

	err := seeder.seedBootstrapAdmin(ctx, tx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDatabaseWithExistingSeeds(t *testing.T) {
	db, mock, cleanup := createMockDB(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS seeds").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// All seeds already recorded
	mock.ExpectQuery("SELECT name FROM seeds").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("bootstrap_admin"))

	// No further transactions should be attempted

	pool := database.NewPool(db, constants.DriverMySQL)
	seeder := NewSeeder(pool, testConfig())

	err := seeder.SeedDatabase(ctx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
