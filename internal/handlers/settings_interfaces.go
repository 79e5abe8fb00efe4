package handlers

import (
	"context"

	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
)

// SettingsServiceInterface defines methods required from the settings service.
// This interface is used by the settings handlers to interact with the settings
// business logic without being tightly coupled to the implementation.
type SettingsServiceInterface interface {
	// Categories lists all known settings categories with display metadata.
	//
	// Returns:
	//   - The category descriptors in stable order
	Categories() []models.CategoryInfo

	// GetAllSettings retrieves the merged settings of every category.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - maskSensitive: Whether sensitive field values are server-redacted
	//
	// Returns:
	//   - The per-category settings views in stable order
	//   - An error if retrieval fails
	GetAllSettings(ctx context.Context, maskSensitive bool) ([]*models.CategorySettings, error)

	// GetCategorySettings retrieves the merged settings of one category.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - category: The category to retrieve
	//   - maskSensitive: Whether sensitive field values are server-redacted
	//
	// Returns:
	//   - The category settings view
	//   - An error if the category is unknown or retrieval fails
	GetCategorySettings(ctx context.Context, category registry.Category, maskSensitive bool) (*models.CategorySettings, error)

	// UpdateCategorySettings validates and applies a partial update to one
	// category, recording an audit entry when anything changed.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - actor: The administrator performing the change
	//   - category: The category to update
	//   - update: The field values to apply and an optional reason
	//
	// Returns:
	//   - The updated category settings view with sensitive values masked
	//   - An error if validation or persistence fails
	UpdateCategorySettings(ctx context.Context, actor models.Actor, category registry.Category, update *models.SettingsUpdate) (*models.CategorySettings, error)

	// ResetCategory restores one category to its registry defaults.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - actor: The administrator performing the reset
	//   - category: The category to reset
	//   - reason: Optional reason carried into the audit entry
	//
	// Returns:
	//   - The category settings view after the reset
	//   - An error if the category is unknown or persistence fails
	ResetCategory(ctx context.Context, actor models.Actor, category registry.Category, reason string) (*models.CategorySettings, error)
}
