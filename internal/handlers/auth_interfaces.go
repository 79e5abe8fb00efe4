// Package handlers provides HTTP request handlers for the settings service API.
package handlers

import (
	"context"
	"time"

	"github.com/dotmac-platform/settings-service/internal/models"
)

// AuthServiceInterface defines methods required from the authentication service.
// This interface is used by the auth handlers to interact with the authentication
// business logic without being tightly coupled to the implementation.
type AuthServiceInterface interface {
	// Authenticate verifies administrator credentials and issues an access token.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - creds: The login credentials to verify
	//
	// Returns:
	//   - The authenticated administrator with credential fields cleared
	//   - A signed access token
	//   - An error if authentication fails
	Authenticate(ctx context.Context, creds *models.Credentials) (*models.AdminUser, string, error)

	// GetUser retrieves an administrator account by ID.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - userID: The ID of the administrator to retrieve
	//
	// Returns:
	//   - The administrator with credential fields cleared
	//   - An error if retrieval fails
	GetUser(ctx context.Context, userID int64) (*models.AdminUser, error)

	// TokenTTL returns the configured access token lifetime.
	TokenTTL() time.Duration
}
