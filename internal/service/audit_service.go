// This file implements the audit service, which reads the append-only
// change trail and can restore the state captured by a previous entry.
package service

import (
	"context"
	"fmt"

	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/repository"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// AuditService exposes read access to the audit trail and the restore
// operation. The trail itself is written by the settings service as a
// side effect of mutations; nothing here appends directly.
type AuditService struct {
	auditRepo repository.AuditRepository
	settings  *SettingsService
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo repository.AuditRepository, settings *SettingsService) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		settings:  settings,
	}
}

// List returns a page of audit entries, newest first, as display views
// carrying both raw and formatted change values. An empty category returns
// entries across all categories; a non-empty unknown category is rejected.
func (s *AuditService) List(ctx context.Context, category string, page, pageSize int) ([]*models.AuditLogEntryView, int, error) {
	cat := registry.Category(category)
	if cat != "" && !registry.Known(cat) {
		return nil, 0, utils.NewUnknownCategoryError(category)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	entries, total, err := s.auditRepo.List(ctx, cat, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*models.AuditLogEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entry.View())
	}
	return views, total, nil
}

// Restore re-applies the "old" side of a previous audit entry's changes,
// returning the settings state to what it was before that entry. The
// restore is itself recorded as a `restore` entry when it changes anything.
//
// Masked sensitive values captured in the entry are skipped by the apply
// path, so restoring never writes a mask over stored plaintext.
func (s *AuditService) Restore(ctx context.Context, actor models.Actor, entryID string) (*models.CategorySettings, error) {
	entry, err := s.auditRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	category := registry.Category(entry.Category)
	if !registry.Known(category) {
		return nil, utils.NewUnknownCategoryError(entry.Category)
	}

	previous := make(map[string]any, len(entry.Changes))
	for key, change := range entry.Changes {
		previous[key] = change.Old
	}

	reason := fmt.Sprintf("restored audit entry %s", entry.ID)
	if _, err := s.settings.ApplyValues(ctx, actor, category, previous, reason, models.ActionRestore); err != nil {
		return nil, err
	}

	return s.settings.GetCategorySettings(ctx, category, true)
}
