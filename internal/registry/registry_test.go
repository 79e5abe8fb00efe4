package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotmac-platform/settings-service/internal/registry"
)

func TestKnown(t *testing.T) {
	assert.True(t, registry.Known(registry.CategoryEmail))
	assert.True(t, registry.Known(registry.CategoryBilling))
	assert.False(t, registry.Known(registry.Category("marketing")))
	assert.False(t, registry.Known(registry.Category("")))
}

func TestGet(t *testing.T) {
	cfg, ok := registry.Get(registry.CategorySecurity)
	require.True(t, ok)
	assert.Equal(t, "Security", cfg.Label)
	assert.NotEmpty(t, cfg.Icon)
	assert.NotEmpty(t, cfg.Color)

	_, ok = registry.Get(registry.Category("bogus"))
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	all := registry.All()

	// Every category returned must be known and carry a field schema.
	assert.Len(t, all, 6)
	for _, c := range all {
		assert.True(t, registry.Known(c))
		assert.NotEmpty(t, registry.Fields(c))
	}

	// Order must be stable across calls.
	assert.Equal(t, all, registry.All())
}

func TestField(t *testing.T) {
	spec, ok := registry.Field(registry.CategoryEmail, "smtp_password")
	require.True(t, ok)
	assert.True(t, spec.Sensitive)
	assert.Equal(t, registry.KindString, spec.Kind)

	_, ok = registry.Field(registry.CategoryEmail, "no_such_field")
	assert.False(t, ok)

	_, ok = registry.Field(registry.Category("bogus"), "smtp_password")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	defaults := registry.Defaults(registry.CategoryBilling)
	require.NotNil(t, defaults)
	assert.Equal(t, "USD", defaults["currency"])
	assert.Equal(t, 0.0, defaults["tax_rate"])

	// Mutating the returned map must not affect later calls.
	defaults["currency"] = "EUR"
	assert.Equal(t, "USD", registry.Defaults(registry.CategoryBilling)["currency"])

	assert.Nil(t, registry.Defaults(registry.Category("bogus")))
}

func TestValidateValue_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		category registry.Category
		key      string
		value    any
		wantErr  bool
	}{
		{"valid string", registry.CategoryGeneral, "company_name", "Dotmac", false},
		{"string gets bool", registry.CategoryGeneral, "company_name", true, true},
		{"valid bool", registry.CategoryGeneral, "maintenance_mode", false, false},
		{"bool gets string", registry.CategoryGeneral, "maintenance_mode", "yes", true},
		{"valid int as json number", registry.CategoryEmail, "smtp_port", float64(2525), false},
		{"int gets fraction", registry.CategoryEmail, "smtp_port", 25.5, true},
		{"valid float", registry.CategoryBilling, "tax_rate", 0.21, false},
		{"float gets string", registry.CategoryBilling, "tax_rate", "0.21", true},
		{"valid object", registry.CategorySecurity, "cors_origins", map[string]any{"allowed": []any{"https://a"}}, false},
		{"object gets scalar", registry.CategorySecurity, "cors_origins", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := registry.Field(tt.category, tt.key)
			require.True(t, ok)

			err := registry.ValidateValue(spec, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateValue_Constraints(t *testing.T) {
	taxRate, ok := registry.Field(registry.CategoryBilling, "tax_rate")
	require.True(t, ok)
	assert.NoError(t, registry.ValidateValue(taxRate, 0.0))
	assert.Error(t, registry.ValidateValue(taxRate, -0.05), "negative tax rate must be rejected")

	digestHour, ok := registry.Field(registry.CategoryNotifications, "digest_hour")
	require.True(t, ok)
	assert.NoError(t, registry.ValidateValue(digestHour, float64(23)))
	assert.Error(t, registry.ValidateValue(digestHour, float64(24)))

	timeout, ok := registry.Field(registry.CategorySecurity, "session_timeout_minutes")
	require.True(t, ok)
	assert.Error(t, registry.ValidateValue(timeout, float64(0)))
}
