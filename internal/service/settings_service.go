// Package service provides business logic implementations for the settings
// platform. It contains services that orchestrate operations across
// repositories and implement the core application functionality.
//
// This file implements the settings service, which owns the canonical
// configuration state: merged category views, validated updates, resets,
// and the audit entries those mutations produce.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/redact"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/repository"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// SettingsService manages configuration state across all categories.
// Every mutation goes through validation against the registry schema and
// produces an audit entry when, and only when, at least one field changed.
type SettingsService struct {
	settingsRepo  repository.SettingsRepository
	auditRepo     repository.AuditRepository
	encryptionKey []byte
}

// NewSettingsService creates a new SettingsService.
//
// Parameters:
//   - settingsRepo: Repository for stored setting rows
//   - auditRepo: Repository for the append-only audit trail
//   - encryptionKey: AES-256 key for at-rest encryption of sensitive values;
//     an empty key disables encryption (development mode)
//
// Returns:
//   - A new SettingsService instance with all dependencies initialized
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	auditRepo repository.AuditRepository,
	encryptionKey []byte,
) *SettingsService {
	return &SettingsService{
		settingsRepo:  settingsRepo,
		auditRepo:     auditRepo,
		encryptionKey: encryptionKey,
	}
}

// Categories returns registry metadata for every known category.
func (s *SettingsService) Categories() []models.CategoryInfo {
	categories := registry.All()
	out := make([]models.CategoryInfo, 0, len(categories))
	for _, c := range categories {
		cfg, _ := registry.Get(c)
		out = append(out, models.CategoryInfo{
			Category:   string(c),
			Label:      cfg.Label,
			Icon:       cfg.Icon,
			Color:      cfg.Color,
			FieldCount: len(registry.Fields(c)),
		})
	}
	return out
}

// GetCategorySettings returns the merged view of one category: registry
// defaults overlaid with stored rows. Sensitive fields are masked when
// maskSensitive is true.
func (s *SettingsService) GetCategorySettings(ctx context.Context, category registry.Category, maskSensitive bool) (*models.CategorySettings, error) {
	if !registry.Known(category) {
		return nil, utils.NewUnknownCategoryError(string(category))
	}

	rows, err := s.settingsRepo.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	values := s.mergeRows(category, rows)
	if maskSensitive {
		maskSensitiveFields(category, values)
	}

	cfg, _ := registry.Get(category)
	return &models.CategorySettings{
		Category: string(category),
		Label:    cfg.Label,
		Icon:     cfg.Icon,
		Color:    cfg.Color,
		Values:   values,
	}, nil
}

// GetAllSettings returns merged views for every known category in registry
// order, with sensitive fields masked when maskSensitive is true.
func (s *SettingsService) GetAllSettings(ctx context.Context, maskSensitive bool) ([]*models.CategorySettings, error) {
	rows, err := s.settingsRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// Group stored rows by category; rows for categories no longer in the
	// registry are ignored.
	byCategory := make(map[registry.Category][]*models.Setting)
	for _, row := range rows {
		c := registry.Category(row.Category)
		if !registry.Known(c) {
			continue
		}
		byCategory[c] = append(byCategory[c], row)
	}

	categories := registry.All()
	out := make([]*models.CategorySettings, 0, len(categories))
	for _, c := range categories {
		values := s.mergeRows(c, byCategory[c])
		if maskSensitive {
			maskSensitiveFields(c, values)
		}
		cfg, _ := registry.Get(c)
		out = append(out, &models.CategorySettings{
			Category: string(c),
			Label:    cfg.Label,
			Icon:     cfg.Icon,
			Color:    cfg.Color,
			Values:   values,
		})
	}
	return out, nil
}

// UpdateCategorySettings validates and applies a partial update to one
// category, recording an `update` audit entry when at least one field
// actually changed. The returned view has sensitive fields masked.
func (s *SettingsService) UpdateCategorySettings(ctx context.Context, actor models.Actor, category registry.Category, update *models.SettingsUpdate) (*models.CategorySettings, error) {
	if _, err := s.ApplyValues(ctx, actor, category, update.Values, update.Reason, models.ActionUpdate); err != nil {
		return nil, err
	}
	return s.GetCategorySettings(ctx, category, true)
}

// ApplyValues validates a set of field values against the registry schema
// and writes the ones that differ from current state, recording a single
// audit entry of the given action when the diff is non-empty. It returns
// the number of fields that changed.
//
// Masked sensitive values are skipped rather than applied: a client echoing
// back a redacted export must never overwrite stored plaintext with a mask.
func (s *SettingsService) ApplyValues(ctx context.Context, actor models.Actor, category registry.Category, values map[string]any, reason string, action models.AuditAction) (int, error) {
	if !registry.Known(category) {
		return 0, utils.NewUnknownCategoryError(string(category))
	}

	// Validate everything before writing anything
	details := make(map[string]string)
	for key, value := range values {
		spec, ok := registry.Field(category, key)
		if !ok {
			details[key] = "unknown field"
			continue
		}
		if spec.Sensitive && redact.IsMaskedValue(value) {
			continue
		}
		if err := registry.ValidateValue(spec, value); err != nil {
			details[key] = err.Error()
		}
	}
	if len(details) > 0 {
		return 0, utils.NewValidationErrorWithDetails("One or more fields are invalid", details)
	}

	// Load current state for the diff
	rows, err := s.settingsRepo.GetByCategory(ctx, category)
	if err != nil {
		return 0, err
	}
	current := s.mergeRows(category, rows)

	// Compute the change set, skipping no-ops and masked sensitive values
	changes := make(map[string]models.FieldChange)
	toWrite := make(map[string]string)
	for key, value := range values {
		spec, _ := registry.Field(category, key)
		if spec.Sensitive && redact.IsMaskedValue(value) {
			continue
		}
		if valuesEqual(current[key], value) {
			continue
		}

		encoded, err := s.encodeValue(spec, value)
		if err != nil {
			return 0, err
		}
		toWrite[key] = encoded

		oldValue, newValue := current[key], value
		if spec.Sensitive {
			// Audit entries never carry plaintext secrets
			oldValue, newValue = redact.MaskAny(oldValue), redact.MaskAny(newValue)
		}
		changes[key] = models.FieldChange{Old: oldValue, New: newValue}
	}

	// A zero-diff mutation writes nothing and records no audit entry
	if len(changes) == 0 {
		return 0, nil
	}

	if err := s.settingsRepo.UpsertMany(ctx, category, toWrite); err != nil {
		return 0, err
	}

	entry := models.NewAuditLogEntry(actor.Email, string(category), action, changes).
		WithRequestMeta(models.RequestMeta{
			Reason:    reason,
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
		})
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return 0, fmt.Errorf("failed to record audit entry: %w", err)
	}

	utils.LogSettingsChange(string(category), string(action), actor.Email, len(changes))

	return len(changes), nil
}

// ResetCategory restores a category to its registry defaults, recording a
// `reset` audit entry with the full diff. Resetting a category already at
// defaults is a no-op with no audit entry.
func (s *SettingsService) ResetCategory(ctx context.Context, actor models.Actor, category registry.Category, reason string) (*models.CategorySettings, error) {
	if !registry.Known(category) {
		return nil, utils.NewUnknownCategoryError(string(category))
	}

	rows, err := s.settingsRepo.GetByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	current := s.mergeRows(category, rows)
	defaults := registry.Defaults(category)

	// The diff covers every field leaving its stored value
	changes := make(map[string]models.FieldChange)
	for key, def := range defaults {
		if valuesEqual(current[key], def) {
			continue
		}
		spec, _ := registry.Field(category, key)
		oldValue, newValue := current[key], def
		if spec.Sensitive {
			oldValue, newValue = redact.MaskAny(oldValue), redact.MaskAny(newValue)
		}
		changes[key] = models.FieldChange{Old: oldValue, New: newValue}
	}

	if len(changes) > 0 {
		if _, err := s.settingsRepo.ResetCategory(ctx, category); err != nil {
			return nil, err
		}

		entry := models.NewAuditLogEntry(actor.Email, string(category), models.ActionReset, changes).
			WithRequestMeta(models.RequestMeta{
				Reason:    reason,
				IPAddress: actor.IPAddress,
				UserAgent: actor.UserAgent,
			})
		if err := s.auditRepo.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record audit entry: %w", err)
		}

		utils.LogSettingsChange(string(category), string(models.ActionReset), actor.Email, len(changes))
	}

	return s.GetCategorySettings(ctx, category, true)
}

// mergeRows overlays stored rows on the registry defaults for a category.
// Rows whose key is no longer in the schema are dropped, and rows whose
// value fails to decode are logged and fall back to the default.
func (s *SettingsService) mergeRows(category registry.Category, rows []*models.Setting) map[string]any {
	values := registry.Defaults(category)
	for _, row := range rows {
		spec, ok := registry.Field(category, row.Key)
		if !ok {
			continue
		}
		value, err := s.decodeValue(spec, row.Value)
		if err != nil {
			log.Warn().
				Str("category", string(category)).
				Str("key", row.Key).
				Err(err).
				Msg("Skipping undecodable stored setting value")
			continue
		}
		values[row.Key] = value
	}
	return values
}

// encodeValue serializes a value for storage, encrypting sensitive fields
// when an encryption key is configured.
func (s *SettingsService) encodeValue(spec registry.FieldSpec, value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode setting value: %w", err)
	}
	if spec.Sensitive && len(s.encryptionKey) > 0 {
		encrypted, err := utils.EncryptValue(string(raw), s.encryptionKey)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt setting value: %w", err)
		}
		return encrypted, nil
	}
	return string(raw), nil
}

// decodeValue reverses encodeValue. Sensitive values written before an
// encryption key was configured decode as plain JSON, so decryption failure
// falls back to a direct parse.
func (s *SettingsService) decodeValue(spec registry.FieldSpec, stored string) (any, error) {
	raw := stored
	if spec.Sensitive && len(s.encryptionKey) > 0 {
		if decrypted, err := utils.DecryptValue(stored, s.encryptionKey); err == nil {
			raw = decrypted
		}
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// maskSensitiveFields redacts sensitive values in a merged map in place.
func maskSensitiveFields(category registry.Category, values map[string]any) {
	for _, spec := range registry.Fields(category) {
		if spec.Sensitive {
			values[spec.Key] = redact.MaskAny(values[spec.Key])
		}
	}
}

// valuesEqual compares two setting values by their canonical JSON encoding,
// which normalizes the int/float64 split between registry defaults and
// decoded request bodies.
func valuesEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}
