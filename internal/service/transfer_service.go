// This file implements the transfer service, which orchestrates settings
// export and import: snapshot assembly, serialization, redaction, and the
// parse/validate/apply import pipeline.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/redact"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// Export formats. JSON is also the only import format: the import side of
// the wire protocol is deliberately narrower than the export side.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatEnv  = "env"
)

// TransferService orchestrates settings export and import.
type TransferService struct {
	settings *SettingsService
}

// NewTransferService creates a new TransferService
func NewTransferService(settings *SettingsService) *TransferService {
	return &TransferService{
		settings: settings,
	}
}

// Export assembles a snapshot of the selected categories and serializes it
// in the requested format. Sensitive fields are server-redacted unless
// options.IncludeSensitive is set.
func (s *TransferService) Export(ctx context.Context, options models.ExportOptions) (*models.ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(options.Format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatYAML && format != FormatEnv {
		return nil, utils.NewValidationError("format", fmt.Sprintf("unsupported export format: %s", options.Format))
	}

	// Unknown categories in an explicit selection fail closed
	for _, c := range options.Selection.Resolve() {
		if !registry.Known(c) {
			return nil, utils.NewUnknownCategoryError(string(c))
		}
	}

	snapshot := models.SettingSnapshot{}
	for _, c := range options.Selection.Resolve() {
		view, err := s.settings.GetCategorySettings(ctx, c, !options.IncludeSensitive)
		if err != nil {
			return nil, err
		}
		snapshot[string(c)] = view.Values
	}

	data, contentType, err := serializeSnapshot(snapshot, format)
	if err != nil {
		return nil, err
	}

	return &models.ExportResult{
		Data:        data,
		Filename:    fmt.Sprintf("settings-export-%s.%s", time.Now().Format("2006-01-02"), format),
		ContentType: contentType,
	}, nil
}

// Import runs the parse/validate/apply pipeline on raw snapshot text.
//
// The pipeline is strictly ordered: a syntactic JSON parse failure stops
// everything with a single "_parse" error and the store is never touched.
// Semantic validation then runs per category against the registry schema;
// a category with any error is excluded from the apply phase entirely.
// With options.ValidateOnly set the apply phase is skipped, making the
// call side-effect free and repeatable.
func (s *TransferService) Import(ctx context.Context, actor models.Actor, raw []byte, options models.ImportOptions) (*models.ValidationResult, error) {
	result := models.NewValidationResult()

	// Phase 1: syntactic parse. Only JSON is accepted on the wire.
	var snapshot models.SettingSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		result.AddError("_parse", "Invalid JSON format")
		return result, nil
	}

	// Phase 2: semantic validation against the registry
	categories := snapshotCategories(snapshot)
	valid := make(map[registry.Category]map[string]any)
	for _, name := range categories {
		c := registry.Category(name)
		if !options.Selection.Contains(c) {
			continue
		}
		if !registry.Known(c) {
			result.AddError(name, "unknown category")
			continue
		}

		fields := snapshot[name]
		clean := true
		for key, value := range fields {
			spec, ok := registry.Field(c, key)
			if !ok {
				result.AddError(name+"."+key, "unknown field")
				clean = false
				continue
			}
			// Masked sensitive values are skipped, not errors: they are
			// the expected shape of a redacted export fed back in
			if spec.Sensitive && redact.IsMaskedValue(value) {
				continue
			}
			if err := registry.ValidateValue(spec, value); err != nil {
				result.AddError(name+"."+key, err.Error())
				clean = false
			}
		}
		if clean {
			valid[c] = fields
		}
	}

	// Phase 3: apply. Dry runs stop here with the validation verdict.
	for _, name := range categories {
		c := registry.Category(name)
		fields, ok := valid[c]
		if !ok {
			continue
		}

		if options.ValidateOnly {
			result.AddImported(c)
			continue
		}

		if _, err := s.settings.ApplyValues(ctx, actor, c, fields, "settings import", models.ActionImport); err != nil {
			return nil, fmt.Errorf("failed to apply imported category %s: %w", c, err)
		}
		result.AddImported(c)
	}

	return result, nil
}

// serializeSnapshot renders a snapshot in the requested format and returns
// the bytes together with the matching content type.
func serializeSnapshot(snapshot models.SettingSnapshot, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to serialize snapshot as JSON: %w", err)
		}
		return data, constants.ContentTypeJSON, nil

	case FormatYAML:
		data, err := yaml.Marshal(snapshot)
		if err != nil {
			return nil, "", fmt.Errorf("failed to serialize snapshot as YAML: %w", err)
		}
		return data, constants.ContentTypeYAML, nil

	case FormatEnv:
		return serializeEnv(snapshot), constants.ContentTypePlainText, nil
	}
	return nil, "", fmt.Errorf("unsupported export format: %s", format)
}

// serializeEnv flattens a snapshot into CATEGORY_FIELD=value lines in
// stable order. String values are written bare; everything else is
// JSON-encoded so the line stays a single token.
func serializeEnv(snapshot models.SettingSnapshot) []byte {
	var b strings.Builder
	for _, category := range snapshotCategories(snapshot) {
		fields := snapshot[category]
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			name := strings.ToUpper(category) + "_" + strings.ToUpper(key)
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(envValue(fields[key]))
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// envValue renders one value for the env format.
func envValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

// snapshotCategories returns the snapshot's category names in stable order.
func snapshotCategories(snapshot models.SettingSnapshot) []string {
	out := make([]string, 0, len(snapshot))
	for name := range snapshot {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
