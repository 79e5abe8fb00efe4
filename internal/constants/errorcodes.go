// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling, categorization,
// and messaging. These constants ensure consistent error reporting and handling
// throughout the application. User-facing error messages are carefully crafted to
// be informative without revealing sensitive implementation details that could aid
// in potential attacks.
package constants

// User-Facing Error Messages define standardized messages that can be safely presented to users.
// These messages provide useful information without exposing sensitive system details.
const (
	// MsgAuthRequired indicates that the user must authenticate to access the resource.
	MsgAuthRequired = "Authentication required"

	// MsgInvalidCredentials indicates login credentials are incorrect.
	MsgInvalidCredentials = "Invalid email or password"

	// MsgAccessDenied indicates that the user lacks permission for the requested action.
	MsgAccessDenied = "You don't have permission to access this resource"

	// MsgInternalServerError provides a generic server error message.
	MsgInternalServerError = "An internal server error occurred"

	// MsgTokenExpired indicates that the user's authentication token has expired.
	MsgTokenExpired = "Authentication token has expired"

	// MsgInvalidToken indicates that the provided token is invalid.
	MsgInvalidToken = "Invalid token"

	// MsgRequestBodyTooLarge indicates that the request payload exceeds size limits.
	MsgRequestBodyTooLarge = "Request body too large"

	// MsgEmptyRequestBody indicates that a request body was expected but not provided.
	MsgEmptyRequestBody = "Request body must not be empty"

	// MsgMalformedJSON indicates that the request body contains invalid JSON.
	MsgMalformedJSON = "Request body contains malformed JSON"

	// MsgResourceNotFound indicates that the requested resource does not exist.
	MsgResourceNotFound = "The requested resource could not be found"

	// MsgResourceAlreadyExists indicates a duplicate resource conflict.
	MsgResourceAlreadyExists = "A resource with the same unique identifier already exists"

	// MsgMethodNotAllowed indicates that the HTTP method is not supported for the endpoint.
	MsgMethodNotAllowed = "This method is not allowed for this resource"

	// MsgUnknownCategory indicates a settings category that is not in the registry.
	MsgUnknownCategory = "Unknown settings category"

	// MsgSettingsImported confirms a successful settings import.
	MsgSettingsImported = "Settings imported successfully"

	// MsgSettingsValidated confirms a successful import dry-run.
	MsgSettingsValidated = "Validation passed"

	// MsgInvalidJSONFormat is the parse error reported for unparseable import payloads.
	// The key it is reported under is ParseErrorKey.
	MsgInvalidJSONFormat = "Invalid JSON format"
)

// Import Error Keys define reserved keys in an import validation error map
// that are not scoped to a particular category or field.
const (
	// ParseErrorKey is the error map key for syntactic parse failures, which
	// are detected before any category is examined.
	ParseErrorKey = "_parse"
)

// Database Error Types define constants for recognizing and handling database-specific errors.
// These constants help identify specific types of database constraint violations.
const (
	// DBErrorDuplicateKey is the PostgreSQL error message for unique constraint violations.
	DBErrorDuplicateKey = "duplicate key value violates unique constraint"

	// PGErrorDuplicateConstraint is the PostgreSQL error code for unique constraint violations.
	PGErrorDuplicateConstraint = "23505"

	// PGErrorForeignKeyConstraint is the PostgreSQL error code for foreign key violations.
	PGErrorForeignKeyConstraint = "23503"

	// PGErrorNotNullConstraint is the PostgreSQL error code for not-null constraint violations.
	PGErrorNotNullConstraint = "23502"
)

// Logger Constants define values used for structured logging.
// These constants ensure consistent log formatting and categorization.
const (
	// LogCategorySettings is the log category for settings-related events.
	LogCategorySettings = "settings"

	// LogCategoryAudit is the log category for audit trail events.
	LogCategoryAudit = "audit"

	// LogCategoryAuth is the log category for authentication-related events.
	LogCategoryAuth = "auth"

	// LogEventLogin is the log event type for administrator login.
	LogEventLogin = "login"

	// LogEventExport is the log event type for settings exports.
	LogEventExport = "export"

	// LogEventImport is the log event type for settings imports.
	LogEventImport = "import"

	// LogRedactedValue is used to replace sensitive values in logs.
	LogRedactedValue = "[REDACTED]"
)
