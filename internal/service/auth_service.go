package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/repository"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// AuthService handles administrator authentication
type AuthService struct {
	userRepo    repository.UserRepository
	jwtService  *auth.JWTService
	passwordCfg *auth.PasswordConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	passwordCfg *auth.PasswordConfig,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		passwordCfg: passwordCfg,
	}
}

// Authenticate verifies administrator credentials and issues an access token.
// Both unknown-email and wrong-password failures produce the same
// invalid-credentials error, so the response does not reveal which part
// was wrong.
func (s *AuthService) Authenticate(ctx context.Context, creds *models.Credentials) (*models.AdminUser, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("login_failed", "0", creds.Email, false, "user not found")
			return nil, "", utils.NewInvalidCredentialsError()
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	// Verify the password
	match, err := auth.VerifyPassword(creds.Password, user.PasswordHash, user.Salt, s.passwordCfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}

	if !match {
		utils.LogAuth("login_failed", fmt.Sprintf("%d", user.ID), user.Email, false, "invalid password")
		return nil, "", utils.NewInvalidCredentialsError()
	}

	// Generate the access token
	accessToken, _, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	utils.LogAuth("login_success", fmt.Sprintf("%d", user.ID), user.Email, true, "")

	return user.Sanitize(), accessToken, nil
}

// TokenTTL returns the configured access token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.jwtService.GetConfig().Expiry
}

// GetUser returns the administrator account for an authenticated user ID
// with credential fields cleared.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*models.AdminUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// CreateUser registers a new administrator account. The password is hashed
// with Argon2id before anything touches the database.
func (s *AuthService) CreateUser(ctx context.Context, email, password string) (*models.AdminUser, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, salt, err := auth.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitize(), nil
}
