// Package registry defines the closed set of settings categories the platform
// understands, together with their display metadata and per-field schemas.
//
// The registry is the single authority consulted by export, import, and audit
// flows: any category or field not described here fails closed. Categories are
// added by editing this file, which automatically extends "select all"
// selections without any stored state migrating.
package registry

import (
	"fmt"
	"sort"
)

// Category identifies one settings partition, such as email or billing.
type Category string

// Known categories. The set is closed; referencing any other value is
// rejected by Known and by import validation.
const (
	CategoryGeneral       Category = "general"
	CategoryEmail         Category = "email"
	CategorySecurity      Category = "security"
	CategoryBilling       Category = "billing"
	CategoryNotifications Category = "notifications"
	CategoryIntegrations  Category = "integrations"
)

// FieldKind describes the JSON shape a field value must have.
type FieldKind string

// Field kinds map onto the JSON types produced by encoding/json: numbers
// arrive as float64, so KindInt additionally requires an integral value.
const (
	KindString FieldKind = "string"
	KindBool   FieldKind = "bool"
	KindInt    FieldKind = "int"
	KindFloat  FieldKind = "float"
	KindObject FieldKind = "object"
)

// CategoryConfig holds the display metadata for one category.
type CategoryConfig struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// FieldSpec describes a single configuration field within a category.
type FieldSpec struct {
	// Key is the field name as it appears in snapshots and audit entries.
	Key string

	// Kind is the required JSON shape of the value.
	Kind FieldKind

	// Sensitive marks fields that must be masked in responses and redacted
	// from exports unless plaintext is explicitly requested.
	Sensitive bool

	// Default is the value used when no row is stored for the field.
	Default any

	// Validate, when set, applies a field-specific constraint after the
	// kind check has passed.
	Validate func(value any) error
}

// categoryConfigs maps each known category to its display metadata.
var categoryConfigs = map[Category]CategoryConfig{
	CategoryGeneral:       {Label: "General", Icon: "settings", Color: "slate"},
	CategoryEmail:         {Label: "Email", Icon: "mail", Color: "blue"},
	CategorySecurity:      {Label: "Security", Icon: "shield", Color: "red"},
	CategoryBilling:       {Label: "Billing", Icon: "credit-card", Color: "green"},
	CategoryNotifications: {Label: "Notifications", Icon: "bell", Color: "amber"},
	CategoryIntegrations:  {Label: "Integrations", Icon: "plug", Color: "purple"},
}

// categoryFields maps each known category to its field schema.
var categoryFields = map[Category][]FieldSpec{
	CategoryGeneral: {
		{Key: "company_name", Kind: KindString, Default: "Acme Inc."},
		{Key: "support_email", Kind: KindString, Default: "support@example.com"},
		{Key: "timezone", Kind: KindString, Default: "UTC"},
		{Key: "locale", Kind: KindString, Default: "en-US"},
		{Key: "maintenance_mode", Kind: KindBool, Default: false},
	},
	CategoryEmail: {
		{Key: "smtp_host", Kind: KindString, Default: "localhost"},
		{Key: "smtp_port", Kind: KindInt, Default: 587, Validate: portRange},
		{Key: "smtp_username", Kind: KindString, Default: ""},
		{Key: "smtp_password", Kind: KindString, Sensitive: true, Default: ""},
		{Key: "from_address", Kind: KindString, Default: "noreply@example.com"},
		{Key: "use_tls", Kind: KindBool, Default: true},
	},
	CategorySecurity: {
		{Key: "session_timeout_minutes", Kind: KindInt, Default: 60, Validate: positiveInt},
		{Key: "password_min_length", Kind: KindInt, Default: 8, Validate: positiveInt},
		{Key: "mfa_required", Kind: KindBool, Default: false},
		{Key: "api_signing_secret", Kind: KindString, Sensitive: true, Default: ""},
		{Key: "cors_origins", Kind: KindObject, Default: map[string]any{"allowed": []any{"*"}}},
	},
	CategoryBilling: {
		{Key: "currency", Kind: KindString, Default: "USD"},
		{Key: "tax_rate", Kind: KindFloat, Default: 0.0, Validate: nonNegative},
		{Key: "invoice_prefix", Kind: KindString, Default: "INV-"},
		{Key: "payment_gateway_key", Kind: KindString, Sensitive: true, Default: ""},
		{Key: "dunning_retry_days", Kind: KindInt, Default: 3, Validate: positiveInt},
		{Key: "grace_period_days", Kind: KindInt, Default: 7, Validate: nonNegative},
	},
	CategoryNotifications: {
		{Key: "webhook_url", Kind: KindString, Default: ""},
		{Key: "slack_webhook", Kind: KindString, Sensitive: true, Default: ""},
		{Key: "digest_enabled", Kind: KindBool, Default: true},
		{Key: "digest_hour", Kind: KindInt, Default: 8, Validate: hourOfDay},
	},
	CategoryIntegrations: {
		{Key: "api_base_url", Kind: KindString, Default: ""},
		{Key: "api_token", Kind: KindString, Sensitive: true, Default: ""},
		{Key: "sync_interval_minutes", Kind: KindInt, Default: 15, Validate: positiveInt},
	},
}

// Known reports whether the category is part of the registry.
func Known(c Category) bool {
	_, ok := categoryConfigs[c]
	return ok
}

// Get returns the display metadata for a category.
// The second return value is false for categories outside the registry.
func Get(c Category) (CategoryConfig, bool) {
	cfg, ok := categoryConfigs[c]
	return cfg, ok
}

// All returns every known category in stable (sorted) order.
func All() []Category {
	out := make([]Category, 0, len(categoryConfigs))
	for c := range categoryConfigs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fields returns the field schema for a category, or nil for unknown categories.
func Fields(c Category) []FieldSpec {
	return categoryFields[c]
}

// Field looks up a single field spec by key within a category.
func Field(c Category, key string) (FieldSpec, bool) {
	for _, f := range categoryFields[c] {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Defaults returns the default value map for a category.
// The map is freshly allocated on each call so callers may mutate it.
func Defaults(c Category) map[string]any {
	fields := categoryFields[c]
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Default
	}
	return out
}

// ValidateValue checks that the value satisfies the field's kind and any
// field-specific constraint. It returns a descriptive error on failure.
func ValidateValue(spec FieldSpec, value any) error {
	if err := checkKind(spec, value); err != nil {
		return err
	}
	if spec.Validate != nil {
		return spec.Validate(value)
	}
	return nil
}

// checkKind verifies the JSON shape of a decoded value against the field kind.
// JSON numbers decode to float64, so integer fields accept integral float64s.
func checkKind(spec FieldSpec, value any) error {
	switch spec.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("must be a string")
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("must be a boolean")
		}
	case KindInt:
		n, ok := asFloat(value)
		if !ok || n != float64(int64(n)) {
			return fmt.Errorf("must be an integer")
		}
	case KindFloat:
		if _, ok := asFloat(value); !ok {
			return fmt.Errorf("must be a number")
		}
	case KindObject:
		switch value.(type) {
		case map[string]any, []any:
		default:
			return fmt.Errorf("must be an object or array")
		}
	default:
		return fmt.Errorf("unknown field kind %q", spec.Kind)
	}
	return nil
}

// asFloat normalizes the numeric representations a value may arrive in.
// Decoded JSON always yields float64, but defaults declared in this file
// are written as untyped Go constants and may be int.
func asFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func positiveInt(value any) error {
	n, _ := asFloat(value)
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func nonNegative(value any) error {
	n, _ := asFloat(value)
	if n < 0 {
		return fmt.Errorf("must be non-negative")
	}
	return nil
}

func hourOfDay(value any) error {
	n, _ := asFloat(value)
	if n < 0 || n > 23 {
		return fmt.Errorf("must be between 0 and 23")
	}
	return nil
}

func portRange(value any) error {
	n, _ := asFloat(value)
	if n < 1 || n > 65535 {
		return fmt.Errorf("must be a valid port number")
	}
	return nil
}
