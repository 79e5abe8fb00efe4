// internal/database/db.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/config"
	"github.com/dotmac-platform/settings-service/internal/constants"
)

// Pool represents a database connection pool
type Pool struct {
	*sql.DB

	driver string
}

var (
	// dbPool is the global database connection pool
	dbPool *Pool
)

// Connect creates a new database connection pool using the configured
// driver. PostgreSQL is the default; MySQL is selected via database.driver.
func Connect(cfg *config.AppConfig) (*Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver := cfg.Database.DriverName()

	log.Info().
		Str("driver", driver).
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Name).
		Str("user", cfg.Database.User).
		Msg("Connecting to database")

	// MySQL servers allow creating the database on first connect; do that
	// before opening the pooled connection. PostgreSQL databases are
	// provisioned by the migrations tooling instead.
	if driver == constants.DriverMySQL {
		if err := ensureMySQLDatabase(ctx, cfg); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to database")

	// Create and store the global database pool
	dbPool = &Pool{DB: db, driver: driver}
	return dbPool, nil
}

// NewPool wraps an existing database handle, primarily for tests that
// supply a mocked *sql.DB.
func NewPool(db *sql.DB, driver string) *Pool {
	return &Pool{DB: db, driver: driver}
}

// Driver returns the SQL driver name the pool was opened with.
func (p *Pool) Driver() string {
	return p.driver
}

// Rebind rewrites a query written with ? placeholders into the placeholder
// style of the active driver. Queries are authored with ? throughout the
// repositories; PostgreSQL needs them converted to $1..$n. Question marks
// inside quoted literals are left alone.
func (p *Pool) Rebind(query string) string {
	if p.driver != constants.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ensureMySQLDatabase connects without a database selected and creates the
// configured database if it does not exist yet.
func ensureMySQLDatabase(ctx context.Context, cfg *config.AppConfig) error {
	password := cfg.Database.Password
	if password != "" {
		password = ":" + password
	}

	rootDSN := fmt.Sprintf(
		"%s%s@tcp(%s:%d)/",
		cfg.Database.User,
		password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	rootDB, err := sql.Open(constants.DriverMySQL, rootDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to root database: %w", err)
	}
	defer rootDB.Close()

	_, err = rootDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.Database.Name))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	log.Info().Msgf("Ensured database '%s' exists", cfg.Database.Name)
	return nil
}

// Get returns the global database connection pool
func Get() *Pool {
	if dbPool == nil {
		log.Fatal().Msg("database connection pool not initialized")
	}
	return dbPool
}

// Close closes the database connection pool
func (p *Pool) Close() {
	if p != nil && p.DB != nil {
		log.Info().Msg("Closing database connection pool")
		p.DB.Close()
	}
}

// Transaction executes a function within a transaction
func (p *Pool) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	// Start a transaction
	tx, err := p.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Handle panics to ensure proper rollback
	defer func() {
		if r := recover(); r != nil {
			// Rollback the transaction in case of panic
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			// Re-throw the panic
			panic(r)
		}
	}()

	// Execute the function within the transaction
	if err := fn(tx); err != nil {
		// Rollback the transaction on error
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w", rbErr)
		}
		return err
	}

	// Commit the transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck performs a health check on the database connection
func (p *Pool) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Run a simple query to verify database functionality
	var result int
	if err := p.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("database returned unexpected result: %d", result)
	}

	return nil
}
