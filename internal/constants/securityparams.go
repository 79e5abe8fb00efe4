package constants

// Context Key Names
const (
	UserIDContextKey    = "user_id"
	EmailContextKey     = "email"
	RequestIDContextKey = "request_id"
)

// Auth Token Types
const (
	TokenTypeAccess = "access"
)

// Credential Validation
const (
	MinPasswordLength = 8
	MaxEmailLength    = 255
)

// Cookie Names
const (
	AuthTokenCookie = "auth_token"

	// CSRFTokenCookie holds the Cross-Site Request Forgery protection token.
	CSRFTokenCookie = "csrf_token"
)

// Sensitive Value Masking
const (
	// MaskedValuePlaceholder is the client-facing placeholder for sensitive
	// values that were withheld from a response.
	MaskedValuePlaceholder = "••••••••"

	// ServerMaskPrefix marks values the server redacted before sending them.
	// A value with this prefix never contained plaintext on the client side.
	ServerMaskPrefix = "***"
)
