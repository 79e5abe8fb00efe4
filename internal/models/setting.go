// Package models provides data structures and operations for the settings
// service. This file contains the persisted setting row and the request
// shapes used to read and update category configuration.
package models

import (
	"time"

	"github.com/dotmac-platform/settings-service/internal/constants"
)

// Setting represents one stored configuration value.
// The canonical configuration for a category is the registry's defaults
// overlaid with the stored rows for that category, so a category with no
// rows is still fully defined.
type Setting struct {
	// ID is the unique identifier for this row
	ID int64 `json:"id" db:"setting_id"`

	// Category is the settings partition this value belongs to
	Category string `json:"category" db:"category"`

	// Key is the field name within the category
	Key string `json:"key" db:"setting_key"`

	// Value is the JSON-encoded field value. Sensitive fields are stored
	// in plaintext here; masking happens at the response boundary.
	Value string `json:"value" db:"value"`

	// UpdatedAt records when this value was last modified
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Setting model.
func (s *Setting) TableName() string {
	return constants.TableSettings
}

// CategorySettings is the response shape for one category: its identifier,
// display metadata, and the merged field values.
type CategorySettings struct {
	// Category is the settings partition identifier
	Category string `json:"category"`

	// Label is the human-readable category name from the registry
	Label string `json:"label"`

	// Icon is the registry icon identifier for the category
	Icon string `json:"icon"`

	// Color is the registry color token for the category
	Color string `json:"color"`

	// Values maps field name to current value. Sensitive fields are masked
	// unless the caller explicitly requested plaintext.
	Values map[string]any `json:"values"`
}

// CategoryInfo is the registry metadata for one category as returned by the
// category listing endpoint.
type CategoryInfo struct {
	// Category is the settings partition identifier
	Category string `json:"category"`

	// Label is the human-readable category name
	Label string `json:"label"`

	// Icon is the registry icon identifier
	Icon string `json:"icon"`

	// Color is the registry color token
	Color string `json:"color"`

	// FieldCount is the number of configuration fields in the category
	FieldCount int `json:"field_count"`
}

// SettingsUpdate represents a request to change fields within one category.
// Only the fields present in Values are touched; the update is rejected if
// any of them fails schema validation.
type SettingsUpdate struct {
	// Values maps field name to the new value
	Values map[string]any `json:"values" validate:"required,min=1"`

	// Reason optionally records why the change was made, carried into the
	// audit entry verbatim
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ResetRequest represents a request to restore a category to its defaults.
type ResetRequest struct {
	// Reason optionally records why the reset was performed
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
