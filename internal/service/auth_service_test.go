package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/config"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

type MockUserRepository struct {
	users  map[int64]*models.AdminUser
	nextID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*models.AdminUser),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return utils.NewDuplicateError("AdminUser", "email", user.Email)
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("AdminUser", id)
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("AdminUser", "email="+email)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

// Lighter hashing parameters keep the tests fast
func testPasswordConfig() *auth.PasswordConfig {
	return &auth.PasswordConfig{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *MockUserRepository) {
	t.Helper()
	userRepo := NewMockUserRepository()
	jwtService := auth.NewJWTService(&config.JWTSettings{
		Secret: "test-secret",
		Expiry: 15 * time.Minute,
		Issuer: "test-issuer",
	})
	return NewAuthService(userRepo, jwtService, testPasswordConfig()), userRepo
}

func seedTestUser(t *testing.T, svc *AuthService) *models.AdminUser {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), "admin@example.com", "Str0ng!Passw0rd")
	require.NoError(t, err)
	return user
}

func TestAuthService_CreateUser(t *testing.T) {
	svc, userRepo := newTestAuthService(t)

	user, err := svc.CreateUser(context.Background(), "admin@example.com", "Str0ng!Passw0rd")

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	// The returned account is sanitized
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.Salt)
	// But the stored one carries the Argon2 hash, never the plaintext
	stored := userRepo.users[user.ID]
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "Str0ng!Passw0rd", stored.PasswordHash)
}

func TestAuthService_CreateUser_WeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.CreateUser(context.Background(), "admin@example.com", "weak")

	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestAuthService_CreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	seedTestUser(t, svc)

	_, err := svc.CreateUser(context.Background(), "admin@example.com", "An0ther!Passw0rd")

	require.Error(t, err)
	assert.True(t, utils.IsDuplicateError(err))
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	seeded := seedTestUser(t, svc)

	user, token, err := svc.Authenticate(context.Background(), &models.Credentials{
		Email:    "admin@example.com",
		Password: "Str0ng!Passw0rd",
	})

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, token)
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	seedTestUser(t, svc)

	user, token, err := svc.Authenticate(context.Background(), &models.Credentials{
		Email:    "admin@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.Equal(t, "Invalid email or password", err.(*utils.AppError).Message)
}

func TestAuthService_Authenticate_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	seedTestUser(t, svc)

	_, _, err := svc.Authenticate(context.Background(), &models.Credentials{
		Email:    "nobody@example.com",
		Password: "Str0ng!Passw0rd",
	})

	// Indistinguishable from a wrong password
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.(*utils.AppError).Message)
}

func TestAuthService_GetUser(t *testing.T) {
	svc, _ := newTestAuthService(t)
	seeded := seedTestUser(t, svc)

	user, err := svc.GetUser(context.Background(), seeded.ID)

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthService_GetUser_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.GetUser(context.Background(), 999)

	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
}
