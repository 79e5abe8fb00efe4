package handlers

import (
	"context"

	"github.com/dotmac-platform/settings-service/internal/models"
)

// AuditServiceInterface defines methods required from the audit service.
// This interface is used by the audit handlers to read the audit trail and
// restore historical values without being tightly coupled to the
// implementation.
type AuditServiceInterface interface {
	// List retrieves a page of audit entries, newest first.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - category: Optional category filter; empty selects all categories
	//   - page: The 1-based page number
	//   - pageSize: The number of entries per page
	//
	// Returns:
	//   - The formatted audit entry views
	//   - The total number of matching entries
	//   - An error if the category is unknown or retrieval fails
	List(ctx context.Context, category string, page, pageSize int) ([]*models.AuditLogEntryView, int, error)

	// Restore re-applies the old values recorded in one audit entry.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - actor: The administrator performing the restore
	//   - entryID: The ID of the audit entry to restore
	//
	// Returns:
	//   - The category settings view after the restore
	//   - An error if the entry does not exist or persistence fails
	Restore(ctx context.Context, actor models.Actor, entryID string) (*models.CategorySettings, error)
}
