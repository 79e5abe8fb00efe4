package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dotmac-platform/settings-service/internal/handlers"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// MockTransferService is a mock implementation of the TransferServiceInterface
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Export(ctx context.Context, options models.ExportOptions) (*models.ExportResult, error) {
	args := m.Called(ctx, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExportResult), args.Error(1)
}

func (m *MockTransferService) Import(ctx context.Context, actor models.Actor, raw []byte, options models.ImportOptions) (*models.ValidationResult, error) {
	args := m.Called(ctx, actor, raw, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ValidationResult), args.Error(1)
}

func setupTransferTest(t *testing.T) (*handlers.TransferHandler, *MockTransferService) {
	mockService := new(MockTransferService)
	handler := handlers.NewTransferHandler(mockService)
	return handler, mockService
}

func TestExport(t *testing.T) {
	handler, mockService := setupTransferTest(t)

	t.Run("Success", func(t *testing.T) {
		result := &models.ExportResult{
			Data:        []byte(`{"general":{"company_name":"Acme Inc."}}`),
			Filename:    "settings-export-2026-08-30.json",
			ContentType: "application/json",
		}
		mockService.On("Export", mock.Anything, mock.MatchedBy(func(o models.ExportOptions) bool {
			return o.Format == "json" && o.Selection.All && !o.IncludeSensitive
		})).Return(result, nil).Once()

		req, err := http.NewRequest("GET", "/api/settings/export?format=json", nil)
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Export(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "settings-export-2026-08-30.json")
		assert.Equal(t, result.Data, rr.Body.Bytes())

		mockService.AssertExpectations(t)
	})

	t.Run("Selection And Sensitive Flags", func(t *testing.T) {
		result := &models.ExportResult{
			Data:        []byte("EMAIL_SMTP_HOST=localhost\n"),
			Filename:    "settings-export-2026-08-30.env",
			ContentType: "text/plain; charset=utf-8",
		}
		mockService.On("Export", mock.Anything, mock.MatchedBy(func(o models.ExportOptions) bool {
			return o.Format == "env" && o.IncludeSensitive &&
				o.Selection.Contains(registry.CategoryEmail) &&
				!o.Selection.Contains(registry.CategoryBilling)
		})).Return(result, nil).Once()

		req, err := http.NewRequest("GET", "/api/settings/export?format=env&categories=email&include_sensitive=true", nil)
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Export(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/api/settings/export", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		handler.Export(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Unsupported Format", func(t *testing.T) {
		mockService.On("Export", mock.Anything, mock.Anything).
			Return(nil, utils.NewValidationError("format", "unsupported export format: xml")).Once()

		req, err := http.NewRequest("GET", "/api/settings/export?format=xml", nil)
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Export(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestImport(t *testing.T) {
	handler, mockService := setupTransferTest(t)

	t.Run("Success", func(t *testing.T) {
		payload := []byte(`{"general":{"company_name":"Initech"}}`)
		result := models.NewValidationResult()
		result.AddImported(registry.CategoryGeneral)

		mockService.On("Import", mock.Anything, mock.Anything, payload, mock.MatchedBy(func(o models.ImportOptions) bool {
			return o.Selection.All && !o.ValidateOnly
		})).Return(result, nil).Once()

		req, err := http.NewRequest("POST", "/api/settings/import", bytes.NewReader(payload))
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Import(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool                    `json:"success"`
			Data    models.ValidationResult `json:"data"`
		}
		err = json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)
		require.Len(t, responseWrapper.Data.Imported, 1)
		assert.Equal(t, registry.CategoryGeneral, responseWrapper.Data.Imported[0])
		assert.Empty(t, responseWrapper.Data.Errors)

		mockService.AssertExpectations(t)
	})

	t.Run("Validation Problems Are Not Transport Errors", func(t *testing.T) {
		payload := []byte(`{not json`)
		result := models.NewValidationResult()
		result.AddError("_parse", "Invalid JSON format")

		mockService.On("Import", mock.Anything, mock.Anything, payload, mock.Anything).
			Return(result, nil).Once()

		req, err := http.NewRequest("POST", "/api/settings/import", bytes.NewReader(payload))
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Import(rr, req)

		// Parse failures come back inside the validation result with a 200
		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool                    `json:"success"`
			Data    models.ValidationResult `json:"data"`
		}
		err = json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)
		assert.Equal(t, "Invalid JSON format", responseWrapper.Data.Errors["_parse"])

		mockService.AssertExpectations(t)
	})

	t.Run("Dry Run Flag", func(t *testing.T) {
		payload := []byte(`{"email":{"smtp_port":2525}}`)
		result := models.NewValidationResult()
		result.AddImported(registry.CategoryEmail)

		mockService.On("Import", mock.Anything, mock.Anything, payload, mock.MatchedBy(func(o models.ImportOptions) bool {
			return o.ValidateOnly
		})).Return(result, nil).Once()

		req, err := http.NewRequest("POST", "/api/settings/import?validate_only=true", bytes.NewReader(payload))
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Import(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Multipart Upload", func(t *testing.T) {
		payload := []byte(`{"general":{"company_name":"Initech"}}`)
		result := models.NewValidationResult()
		result.AddImported(registry.CategoryGeneral)

		mockService.On("Import", mock.Anything, mock.Anything, payload, mock.Anything).
			Return(result, nil).Once()

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "settings.json")
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req, err := http.NewRequest("POST", "/api/settings/import", &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req = req.WithContext(createAuthContext(1, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Import(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req, err := http.NewRequest("POST", "/api/settings/import", bytes.NewReader([]byte(`{}`)))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		handler.Import(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
