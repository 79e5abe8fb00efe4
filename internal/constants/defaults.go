// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants provide sensible defaults for configuration settings, establish
// boundaries for resource usage, and define security parameters. Changes to these
// values may significantly impact application behavior, performance, and security.
package constants

// Default Pagination Values define the parameters used for paginated responses.
// These constants ensure consistent and reasonable pagination behavior.
const (
	// DefaultPage is the default page number for paginated results when not specified.
	DefaultPage = 1

	// DefaultPageSize is the default number of items per page when not specified.
	DefaultPageSize = 20

	// MaxPageSize is the maximum allowable page size to prevent excessive resource usage.
	MaxPageSize = 100

	// MinPageSize is the minimum allowable page size.
	MinPageSize = 1
)

// Default Configuration Values define fallback settings when not specified in configuration.
// These constants provide sensible defaults for core application settings.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBDriver is the default database driver when not configured.
	DefaultDBDriver = "postgres"

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default minimum number of database connections.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"
)

// Environment Types define the recognized application running environments.
// These constants are used to adjust behavior based on the deployment environment.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// File Size Limits define the maximum allowed sizes for various uploads.
// These constants help prevent denial of service attacks via excessive resource consumption.
const (
	// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies,
	// including uploaded settings snapshot files.
	MaxRequestBodySize = 1048576 // 1MB in bytes
)

// Default Password Hash Settings define the parameters for password hashing.
// These constants balance security and performance for password storage.
const (
	// DefaultPasswordHashMemory is the memory cost parameter for Argon2id hashing.
	// Higher values increase security but require more memory.
	DefaultPasswordHashMemory = 64 * 1024

	// DefaultPasswordHashIterations is the number of iterations for Argon2id hashing.
	// Higher values increase security but require more CPU time.
	DefaultPasswordHashIterations = 3

	// DefaultPasswordHashParallelism is the parallelism parameter for Argon2id hashing.
	// This affects the number of threads used during hashing.
	DefaultPasswordHashParallelism = 2

	// DefaultPasswordHashSaltLength is the length in bytes of the random salt.
	// Longer salts increase resistance to rainbow table attacks.
	DefaultPasswordHashSaltLength = 16

	// DefaultPasswordHashKeyLength is the length in bytes of the generated hash.
	// Longer hashes increase resistance to brute force attacks.
	DefaultPasswordHashKeyLength = 32

	// DevPasswordHashMemory is a reduced memory setting for development environments.
	DevPasswordHashMemory = 16 * 1024

	// DevPasswordHashIterations is a reduced iteration count for development environments.
	DevPasswordHashIterations = 1
)

// Auth Constants define values related to token management.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "settings-service"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "
)

// Export Constants define values used by the settings export workflow.
const (
	// ExportFilenamePrefix is the leading part of generated export filenames.
	// Full filenames follow the pattern settings-export-<YYYY-MM-DD>.<ext>.
	ExportFilenamePrefix = "settings-export-"

	// ExportDateLayout is the date layout used in export filenames.
	ExportDateLayout = "2006-01-02"
)

// Display Formatting Limits define bounds applied when values are prepared
// for human display. They are never applied to stored or transported values.
const (
	// MaxDisplayValueLength is the longest string rendered verbatim in audit
	// change listings; longer values are truncated to this length with a
	// trailing ellipsis.
	MaxDisplayValueLength = 50
)
