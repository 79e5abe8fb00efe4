// Package models provides data structures and operations for the settings
// service. This file contains the transport artifacts of the export/import
// workflow: category selections, snapshots, and validation results.
package models

import (
	"strings"

	"github.com/dotmac-platform/settings-service/internal/registry"
)

// Selection is a tagged category selection: either the "all" sentinel or an
// explicit set. The sentinel is tracked as a flag rather than a materialized
// list so that categories added to the registry later are automatically
// included in "all" selections.
type Selection struct {
	// All selects every known category when true; Items is ignored.
	All bool

	// Items is the explicit category set when All is false.
	Items []registry.Category
}

// SelectAll returns the selection covering every known category.
func SelectAll() Selection {
	return Selection{All: true}
}

// ParseSelection interprets a selection parameter: empty or "all" selects
// everything, otherwise a comma-separated category list. Unknown categories
// are preserved so that validation can fail closed on them rather than
// silently dropping them.
func ParseSelection(raw string) Selection {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return SelectAll()
	}

	var items []registry.Category
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, registry.Category(part))
	}
	return Selection{Items: items}
}

// Resolve expands the selection into a concrete category list.
// For the "all" sentinel this is the current registry contents.
func (s Selection) Resolve() []registry.Category {
	if s.All {
		return registry.All()
	}
	return s.Items
}

// Contains reports whether a category is covered by the selection. The
// "all" sentinel covers everything, unknown names included: filtering
// happens here, rejection of unknown categories happens in validation.
func (s Selection) Contains(c registry.Category) bool {
	if s.All {
		return true
	}
	for _, item := range s.Items {
		if item == c {
			return true
		}
	}
	return false
}

// SettingSnapshot is the serialized form of exported settings: category →
// field → value. It exists only in transit between one export and one
// import and is never persisted as an entity.
type SettingSnapshot map[string]map[string]any

// ExportOptions carries the parameters of an export operation.
type ExportOptions struct {
	// Format is the serialization format: json, yaml, or env.
	Format string

	// Selection determines which categories are exported.
	Selection Selection

	// IncludeSensitive exports sensitive fields in plaintext when true;
	// otherwise they appear server-redacted in the output.
	IncludeSensitive bool
}

// ExportResult is a serialized snapshot ready to be sent as a file download.
type ExportResult struct {
	// Data is the serialized snapshot
	Data []byte

	// Filename is the suggested download filename, dated for uniqueness
	Filename string

	// ContentType is the MIME type matching the chosen format
	ContentType string
}

// ImportOptions carries the parameters of an import operation.
type ImportOptions struct {
	// Selection limits which snapshot categories are processed.
	Selection Selection

	// ValidateOnly performs a dry run with no side effects when true.
	ValidateOnly bool
}

// ValidationResult is the outcome of an import or import dry-run.
type ValidationResult struct {
	// Imported lists the categories that were successfully processed:
	// validated in dry-run mode, validated and applied otherwise. A
	// category with any scoped error never appears here.
	Imported []registry.Category `json:"imported"`

	// Errors maps a category, "category.field" path, or the reserved
	// "_parse" key to a human-readable problem description.
	Errors map[string]string `json:"errors"`
}

// NewValidationResult creates an empty result with both fields initialized,
// so the JSON encoding is always `{"imported":[],"errors":{}}` rather than
// nulls.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Imported: []registry.Category{},
		Errors:   map[string]string{},
	}
}

// HasErrors reports whether any validation error was recorded.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// AddError records a problem scoped to the given key.
func (r *ValidationResult) AddError(key, message string) {
	r.Errors[key] = message
}

// AddImported records a successfully processed category.
func (r *ValidationResult) AddImported(c registry.Category) {
	r.Imported = append(r.Imported, c)
}
