package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/handlers"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// MockAuthService is a mock implementation of the AuthServiceInterface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, creds *models.Credentials) (*models.AdminUser, string, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.AdminUser), args.String(1), args.Error(2)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID int64) (*models.AdminUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAuthService) TokenTTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func setupAuthTest(t *testing.T) (*handlers.AuthHandler, *MockAuthService) {
	mockService := new(MockAuthService)
	handler := handlers.NewAuthHandler(mockService)
	return handler, mockService
}

func TestLogin(t *testing.T) {
	handler, mockService := setupAuthTest(t)

	t.Run("Success", func(t *testing.T) {
		user := &models.AdminUser{ID: 1, Email: "admin@example.com"}
		mockService.On("Authenticate", mock.Anything, mock.MatchedBy(func(c *models.Credentials) bool {
			return c.Email == "admin@example.com" && c.Password == "correct-password"
		})).Return(user, "signed-token", nil).Once()
		mockService.On("TokenTTL").Return(15 * time.Minute).Once()

		body := []byte(`{"email":"admin@example.com","password":"correct-password"}`)
		req, err := http.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Host = "settings.example.com"

		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool `json:"success"`
			Data    struct {
				User        models.AdminUser `json:"user"`
				AccessToken string           `json:"access_token"`
				TokenType   string           `json:"token_type"`
				ExpiresIn   int              `json:"expires_in"`
			} `json:"data"`
		}
		err = json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, "admin@example.com", responseWrapper.Data.User.Email)
		assert.Equal(t, "signed-token", responseWrapper.Data.AccessToken)
		assert.Equal(t, "Bearer", responseWrapper.Data.TokenType)
		assert.Equal(t, 900, responseWrapper.Data.ExpiresIn)

		// The access token is also set as an HTTP-only cookie
		cookies := rr.Result().Cookies()
		var authCookie *http.Cookie
		for _, c := range cookies {
			if c.Name == constants.AuthTokenCookie {
				authCookie = c
			}
		}
		require.NotNil(t, authCookie)
		assert.Equal(t, "signed-token", authCookie.Value)
		assert.True(t, authCookie.HttpOnly)

		mockService.AssertExpectations(t)
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		mockService.On("Authenticate", mock.Anything, mock.Anything).
			Return(nil, "", utils.NewInvalidCredentialsError()).Once()

		body := []byte(`{"email":"admin@example.com","password":"wrong-password"}`)
		req, err := http.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		body := []byte(`{"email":"not-an-email"}`)
		req, err := http.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		rr := httptest.NewRecorder()
		handler.Login(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLogout(t *testing.T) {
	handler, _ := setupAuthTest(t)

	req, err := http.NewRequest("POST", "/api/auth/logout", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// The auth cookie is cleared
	cookies := rr.Result().Cookies()
	var authCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == constants.AuthTokenCookie {
			authCookie = c
		}
	}
	require.NotNil(t, authCookie)
	assert.Empty(t, authCookie.Value)
	assert.Equal(t, -1, authCookie.MaxAge)
}

func TestMe(t *testing.T) {
	handler, mockService := setupAuthTest(t)

	t.Run("Success", func(t *testing.T) {
		user := &models.AdminUser{ID: 42, Email: "admin@example.com"}
		mockService.On("GetUser", mock.Anything, int64(42)).Return(user, nil).Once()

		req, err := http.NewRequest("GET", "/api/auth/me", nil)
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(42, "admin@example.com"))

		rr := httptest.NewRecorder()
		handler.Me(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool             `json:"success"`
			Data    models.AdminUser `json:"data"`
		}
		err = json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)
		assert.Equal(t, int64(42), responseWrapper.Data.ID)

		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/api/auth/me", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		handler.Me(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockService.On("GetUser", mock.Anything, int64(7)).
			Return(nil, utils.NewNotFoundError("AdminUser", int64(7))).Once()

		req, err := http.NewRequest("GET", "/api/auth/me", nil)
		require.NoError(t, err)
		req = req.WithContext(createAuthContext(7, "ghost@example.com"))

		rr := httptest.NewRecorder()
		handler.Me(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}
