// Package server provides the HTTP server for the settings service.
// It handles routing, middleware configuration, and server lifecycle management.
//
// The server follows a structured initialization approach with dependency
// injection and proper lifecycle management: database → auth providers →
// repositories → services → handlers → routes. It handles graceful shutdown
// and periodic maintenance tasks such as audit trail retention pruning.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/config"
	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/database"
	"github.com/dotmac-platform/settings-service/internal/handlers"
	"github.com/dotmac-platform/settings-service/internal/repository"
	"github.com/dotmac-platform/settings-service/internal/service"
	"github.com/dotmac-platform/settings-service/migrations"
	"github.com/dotmac-platform/settings-service/scripts"
)

// Handlers contains all HTTP handlers for the application.
// It centralizes handler management for consistent request processing
// and simplifies dependency injection throughout the application.
type Handlers struct {
	// AuthHandler manages authentication endpoints
	AuthHandler *handlers.AuthHandler

	// SettingsHandler manages category settings endpoints
	SettingsHandler *handlers.SettingsHandler

	// TransferHandler manages settings export and import endpoints
	TransferHandler *handlers.TransferHandler

	// AuditHandler manages audit trail endpoints
	AuditHandler *handlers.AuditHandler
}

// AuthProviders contains all authentication providers for the application.
// This structure encapsulates authentication-related dependencies
// to simplify initialization and testing.
type AuthProviders struct {
	// JWTService handles JWT token generation and validation
	JWTService *auth.JWTService

	// PasswordCfg contains password hashing and validation configuration
	PasswordCfg *auth.PasswordConfig
}

// Server represents the settings service API server.
// It encapsulates all server components and handles server lifecycle
// management, including initialization, startup, and graceful shutdown.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// authProviders contains authentication services
	authProviders *AuthProviders

	// httpServer is the underlying HTTP server
	httpServer *http.Server
}

// NewServer creates a new server instance with all required components.
//
// Parameters:
//   - cfg: Application configuration including database, server, and auth settings
//
// Returns:
//   - A fully initialized Server instance ready to start
//   - An error if initialization of any component fails
func NewServer(cfg *config.AppConfig) (*Server, error) {
	// Create server instance
	s := &Server{
		Config: cfg,
	}

	// Initialize components
	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupAuthProviders(); err != nil {
		return nil, fmt.Errorf("failed to set up auth providers: %w", err)
	}

	if err := s.setupRepositories(); err != nil {
		return nil, fmt.Errorf("failed to set up repositories: %w", err)
	}

	if err := s.setupServices(); err != nil {
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	if err := s.setupHandlers(); err != nil {
		return nil, fmt.Errorf("failed to set up handlers: %w", err)
	}

	// Set up routes
	s.SetupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase initializes the database connection and runs migrations.
// It ensures the schema is up-to-date and seeds the bootstrap administrator
// account when the user table is empty.
func (s *Server) setupDatabase() error {
	// Connect to the database
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}

	s.Db = db

	// Run migrations to create tables if they don't exist
	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Seed the bootstrap administrator account when the user table is empty
	seeder := scripts.NewSeeder(db, s.Config)
	if err := seeder.SeedDatabase(context.Background()); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	return nil
}

// setupAuthProviders initializes authentication providers.
// It creates services for JWT token management and password handling.
func (s *Server) setupAuthProviders() error {
	// Create JWT service
	jwtService := auth.NewJWTService(&s.Config.JWT)

	// Create password config
	passwordCfg := auth.ConfigFromAppConfig(s.Config)

	// Store providers
	s.authProviders = &AuthProviders{
		JWTService:  jwtService,
		PasswordCfg: passwordCfg,
	}

	return nil
}

// repositories holds all repositories used by the server.
// These provide data access abstraction for different domain entities.
var repositories struct {
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	auditRepo    repository.AuditRepository
}

// setupRepositories initializes all data repositories.
func (s *Server) setupRepositories() error {
	// Initialize repositories
	repositories.userRepo = repository.NewUserRepository(s.Db)
	repositories.settingsRepo = repository.NewSettingsRepository(s.Db)
	repositories.auditRepo = repository.NewAuditRepository(s.Db)

	return nil
}

// services holds all services used by the server.
// These provide business logic implementations for the application.
var services struct {
	authService     *service.AuthService
	settingsService *service.SettingsService
	transferService *service.TransferService
	auditService    *service.AuditService
}

// setupServices initializes all business services.
// It creates service instances using the previously initialized repositories.
func (s *Server) setupServices() error {
	// Initialize services with explicit error handling
	if s.authProviders == nil || s.authProviders.JWTService == nil {
		return fmt.Errorf("JWT service not initialized")
	}
	if s.authProviders.PasswordCfg == nil {
		return fmt.Errorf("password config not initialized")
	}

	// Initialize services
	services.authService = service.NewAuthService(
		repositories.userRepo,
		s.authProviders.JWTService,
		s.authProviders.PasswordCfg,
	)

	services.settingsService = service.NewSettingsService(
		repositories.settingsRepo,
		repositories.auditRepo,
		[]byte(s.Config.Encryption.Key),
	)

	services.transferService = service.NewTransferService(services.settingsService)

	services.auditService = service.NewAuditService(
		repositories.auditRepo,
		services.settingsService,
	)

	return nil
}

// setupHandlers initializes all HTTP request handlers.
// It creates handler instances using the previously initialized services.
func (s *Server) setupHandlers() error {
	// Initialize handlers with proper dependency injection
	s.Handlers = &Handlers{
		AuthHandler: handlers.NewAuthHandler(services.authService),
		// services.settingsService implicitly implements handlers.SettingsServiceInterface
		SettingsHandler: handlers.NewSettingsHandler(services.settingsService),
		TransferHandler: handlers.NewTransferHandler(services.transferService),
		AuditHandler:    handlers.NewAuditHandler(services.auditService),
	}

	// Validate that services are properly initialized
	if s.Handlers.AuthHandler == nil {
		return fmt.Errorf("failed to initialize AuthHandler")
	}

	return nil
}

// Start starts the HTTP server and sets up signal handling for graceful shutdown.
// It runs in a blocking mode, waiting for either server errors or shutdown signals.
func (s *Server) Start() error {
	// Create a channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start the server in a separate goroutine
	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	// Create a channel to listen for OS signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Set up maintenance tasks
	s.SetupMaintenanceTasks()

	// Block until an OS signal or an error is received
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		// Create a context with a timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		// Shutdown the server
		if err := s.Shutdown(ctx); err != nil {
			// Shutdown the server immediately if graceful shutdown fails
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, closing all connections properly.
// It ensures in-flight requests are completed before shutting down.
func (s *Server) Shutdown(ctx context.Context) error {
	// Shutdown the HTTP server
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	// Close the database connection
	s.Db.Close()
	log.Info().Msg("Database connection closed")

	return nil
}

// SetupMaintenanceTasks sets up periodic maintenance tasks for the server.
// The audit trail is append-only, so nothing here touches stored data: the
// recurring task is a database health probe with pool statistics for the
// operations log.
func (s *Server) SetupMaintenanceTasks() {
	// Set up a ticker for maintenance tasks
	ticker := time.NewTicker(constants.DBMaintenanceInterval)
	go func() {
		for range ticker.C {
			// Create a context with a timeout
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

			s.runMaintenance(ctx)

			// Call cancel at the end of each iteration to avoid resource leak
			cancel()
		}
	}()
}

// runMaintenance performs one maintenance sweep: verify the database still
// answers and report connection pool usage.
func (s *Server) runMaintenance(ctx context.Context) {
	if err := s.Db.HealthCheck(ctx); err != nil {
		log.Error().Err(err).Msg("Database health check failed during maintenance")
		return
	}

	stats := s.Db.Stats()
	log.Info().
		Int("open_connections", stats.OpenConnections).
		Int("in_use", stats.InUse).
		Int("idle", stats.Idle).
		Msg("Database maintenance check completed")
}
