package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// newTestTransferService wires a transfer service over in-memory fakes
func newTestTransferService() (*TransferService, *MockSettingsRepository, *MockAuditRepository) {
	svc, settingsRepo, auditRepo := newTestSettingsService()
	return NewTransferService(svc), settingsRepo, auditRepo
}

func TestTransferService_Export_JSON(t *testing.T) {
	transfer, repo, _ := newTestTransferService()

	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryGeneral, "company_name", `"Initech"`))

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:    "json",
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.Equal(t, constants.ContentTypeJSON, result.ContentType)
	expected := fmt.Sprintf("settings-export-%s.json", time.Now().Format("2006-01-02"))
	assert.Equal(t, expected, result.Filename)

	var snapshot models.SettingSnapshot
	require.NoError(t, json.Unmarshal(result.Data, &snapshot))
	require.Len(t, snapshot, len(registry.All()))
	assert.Equal(t, "Initech", snapshot["general"]["company_name"])
}

func TestTransferService_Export_DefaultsToJSON(t *testing.T) {
	transfer, _, _ := newTestTransferService()

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.Equal(t, constants.ContentTypeJSON, result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".json"))
}

func TestTransferService_Export_YAML(t *testing.T) {
	transfer, _, _ := newTestTransferService()

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:    "yaml",
		Selection: models.Selection{Items: []registry.Category{registry.CategoryGeneral}},
	})

	require.NoError(t, err)
	assert.Equal(t, constants.ContentTypeYAML, result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".yaml"))

	var snapshot map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(result.Data, &snapshot))
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Acme Inc.", snapshot["general"]["company_name"])
}

func TestTransferService_Export_Env(t *testing.T) {
	transfer, repo, _ := newTestTransferService()

	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryEmail, "smtp_port", `2525`))

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:    "env",
		Selection: models.Selection{Items: []registry.Category{registry.CategoryEmail}},
	})

	require.NoError(t, err)
	assert.Equal(t, constants.ContentTypePlainText, result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	assert.Contains(t, lines, "EMAIL_SMTP_PORT=2525")
	assert.Contains(t, lines, "EMAIL_SMTP_HOST=localhost")
	assert.Contains(t, lines, "EMAIL_USE_TLS=true")
}

func TestTransferService_Export_RedactsSensitive(t *testing.T) {
	transfer, repo, _ := newTestTransferService()

	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryEmail, "smtp_password", `"hunter2-longenough"`))

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:    "json",
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.NotContains(t, string(result.Data), "hunter2")

	var snapshot models.SettingSnapshot
	require.NoError(t, json.Unmarshal(result.Data, &snapshot))
	assert.Equal(t, constants.ServerMaskPrefix+"ough", snapshot["email"]["smtp_password"])
}

func TestTransferService_Export_IncludeSensitive(t *testing.T) {
	transfer, repo, _ := newTestTransferService()

	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryEmail, "smtp_password", `"hunter2-longenough"`))

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:           "json",
		Selection:        models.SelectAll(),
		IncludeSensitive: true,
	})

	require.NoError(t, err)

	var snapshot models.SettingSnapshot
	require.NoError(t, json.Unmarshal(result.Data, &snapshot))
	assert.Equal(t, "hunter2-longenough", snapshot["email"]["smtp_password"])
}

func TestTransferService_Export_SelectionFilters(t *testing.T) {
	transfer, _, _ := newTestTransferService()

	result, err := transfer.Export(context.Background(), models.ExportOptions{
		Format: "json",
		Selection: models.Selection{Items: []registry.Category{
			registry.CategoryBilling,
			registry.CategorySecurity,
		}},
	})

	require.NoError(t, err)

	var snapshot models.SettingSnapshot
	require.NoError(t, json.Unmarshal(result.Data, &snapshot))
	require.Len(t, snapshot, 2)
	assert.Contains(t, snapshot, "billing")
	assert.Contains(t, snapshot, "security")
}

func TestTransferService_Export_UnknownCategory(t *testing.T) {
	transfer, _, _ := newTestTransferService()

	_, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:    "json",
		Selection: models.Selection{Items: []registry.Category{"bogus"}},
	})

	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestTransferService_Export_UnsupportedFormat(t *testing.T) {
	transfer, _, _ := newTestTransferService()

	_, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:    "xml",
		Selection: models.SelectAll(),
	})

	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestTransferService_Import_ParseFailure(t *testing.T) {
	transfer, repo, auditRepo := newTestTransferService()

	result, err := transfer.Import(context.Background(), testActor(), []byte("{not json"), models.ImportOptions{
		Selection: models.SelectAll(),
	})

	// Parse failure is a result, not a transport error
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Equal(t, map[string]string{"_parse": "Invalid JSON format"}, result.Errors)

	// The store was never touched
	assert.Empty(t, repo.stored)
	assert.Empty(t, auditRepo.Entries())
}

func TestTransferService_Import_Applies(t *testing.T) {
	transfer, repo, auditRepo := newTestTransferService()

	raw := []byte(`{"general": {"company_name": "Initech"}, "billing": {"currency": "EUR"}}`)

	result, err := transfer.Import(context.Background(), testActor(), raw, models.ImportOptions{
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []registry.Category{"general", "billing"}, result.Imported)
	assert.Empty(t, result.Errors)

	assert.Equal(t, `"Initech"`, repo.stored[registry.CategoryGeneral]["company_name"])
	assert.Equal(t, `"EUR"`, repo.stored[registry.CategoryBilling]["currency"])

	// One import entry per changed category
	entries := auditRepo.Entries()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, models.ActionImport, entry.Action)
	}
}

func TestTransferService_Import_ZeroDiffNoAudit(t *testing.T) {
	transfer, _, auditRepo := newTestTransferService()

	// Importing the defaults changes nothing: imported, but not audited
	raw := []byte(`{"general": {"company_name": "Acme Inc."}}`)

	result, err := transfer.Import(context.Background(), testActor(), raw, models.ImportOptions{
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []registry.Category{"general"}, result.Imported)
	assert.Empty(t, auditRepo.Entries())
}

func TestTransferService_Import_ValidateOnly(t *testing.T) {
	transfer, repo, auditRepo := newTestTransferService()

	raw := []byte(`{"general": {"company_name": "Initech"}}`)
	options := models.ImportOptions{
		Selection:    models.SelectAll(),
		ValidateOnly: true,
	}

	// A dry run is side-effect free and repeatable
	for i := 0; i < 2; i++ {
		result, err := transfer.Import(context.Background(), testActor(), raw, options)
		require.NoError(t, err)
		assert.ElementsMatch(t, []registry.Category{"general"}, result.Imported)
		assert.Empty(t, result.Errors)
	}

	assert.Empty(t, repo.stored)
	assert.Empty(t, auditRepo.Entries())
}

func TestTransferService_Import_InvalidFieldExcludesCategory(t *testing.T) {
	transfer, repo, auditRepo := newTestTransferService()

	// billing has a constraint violation; general is clean
	raw := []byte(`{"billing": {"tax_rate": -0.5, "currency": "EUR"}, "general": {"timezone": "Europe/Oslo"}}`)

	result, err := transfer.Import(context.Background(), testActor(), raw, models.ImportOptions{
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []registry.Category{"general"}, result.Imported)
	assert.Contains(t, result.Errors, "billing.tax_rate")

	// Nothing from the failed category was applied, not even the clean field
	assert.Empty(t, repo.stored[registry.CategoryBilling])
	assert.Equal(t, `"Europe/Oslo"`, repo.stored[registry.CategoryGeneral]["timezone"])

	// And no audit entry exists for it
	for _, entry := range auditRepo.Entries() {
		assert.NotEqual(t, "billing", entry.Category)
	}
}

func TestTransferService_Import_UnknownCategoryAndField(t *testing.T) {
	transfer, _, _ := newTestTransferService()

	raw := []byte(`{"bogus": {"x": 1}, "general": {"no_such_field": true}}`)

	result, err := transfer.Import(context.Background(), testActor(), raw, models.ImportOptions{
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Equal(t, "unknown category", result.Errors["bogus"])
	assert.Equal(t, "unknown field", result.Errors["general.no_such_field"])
}

func TestTransferService_Import_SkipsMaskedSensitive(t *testing.T) {
	transfer, repo, _ := newTestTransferService()

	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryEmail, "smtp_password", `"real-secret-value"`))

	// A redacted export fed back in must not clobber the stored secret
	raw := []byte(`{"email": {"smtp_password": "***ough", "smtp_host": "smtp.example.com"}}`)

	result, err := transfer.Import(context.Background(), testActor(), raw, models.ImportOptions{
		Selection: models.SelectAll(),
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []registry.Category{"email"}, result.Imported)
	assert.Equal(t, `"real-secret-value"`, repo.stored[registry.CategoryEmail]["smtp_password"])
	assert.Equal(t, `"smtp.example.com"`, repo.stored[registry.CategoryEmail]["smtp_host"])
}

func TestTransferService_Import_SelectionFilters(t *testing.T) {
	transfer, repo, _ := newTestTransferService()

	// Only billing is selected; general is present but ignored, not an error
	raw := []byte(`{"billing": {"currency": "EUR"}, "general": {"timezone": "Europe/Oslo"}}`)

	result, err := transfer.Import(context.Background(), testActor(), raw, models.ImportOptions{
		Selection: models.Selection{Items: []registry.Category{registry.CategoryBilling}},
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []registry.Category{"billing"}, result.Imported)
	assert.Empty(t, result.Errors)
	assert.Empty(t, repo.stored[registry.CategoryGeneral])
}

func TestTransferService_RoundTrip(t *testing.T) {
	transfer, repo, auditRepo := newTestTransferService()

	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryEmail, "smtp_password", `"hunter2-longenough"`))
	require.NoError(t, repo.Upsert(context.Background(), registry.CategoryGeneral, "company_name", `"Initech"`))

	// Export with plaintext secrets, then import the result verbatim
	exported, err := transfer.Export(context.Background(), models.ExportOptions{
		Format:           "json",
		Selection:        models.SelectAll(),
		IncludeSensitive: true,
	})
	require.NoError(t, err)

	result, err := transfer.Import(context.Background(), testActor(), exported.Data, models.ImportOptions{
		Selection: models.SelectAll(),
	})
	require.NoError(t, err)

	// Every category validates; none changed, so nothing is audited
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Imported, len(registry.All()))
	assert.Empty(t, auditRepo.Entries())
	assert.Equal(t, `"hunter2-longenough"`, repo.stored[registry.CategoryEmail]["smtp_password"])
}
