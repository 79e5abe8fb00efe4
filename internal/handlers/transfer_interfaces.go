package handlers

import (
	"context"

	"github.com/dotmac-platform/settings-service/internal/models"
)

// TransferServiceInterface defines methods required from the transfer service.
// This interface is used by the transfer handlers to run settings export and
// import without being tightly coupled to the implementation.
type TransferServiceInterface interface {
	// Export assembles and serializes a snapshot of the selected categories.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - options: The export format, category selection, and sensitivity flag
	//
	// Returns:
	//   - The serialized snapshot with download metadata
	//   - An error if the format or selection is invalid or assembly fails
	Export(ctx context.Context, options models.ExportOptions) (*models.ExportResult, error)

	// Import runs the parse/validate/apply pipeline on raw snapshot text.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - actor: The administrator performing the import
	//   - raw: The snapshot text to import; only JSON is accepted
	//   - options: The category selection and dry-run flag
	//
	// Returns:
	//   - The validation result listing imported categories and scoped errors
	//   - An error only when applying validated values fails
	Import(ctx context.Context, actor models.Actor, raw []byte, options models.ImportOptions) (*models.ValidationResult, error)
}
