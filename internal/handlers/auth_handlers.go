package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// AuthHandler handles authentication-related routes
type AuthHandler struct {
	authService AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthServiceInterface) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles administrator authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Decode and validate the request body
	var creds models.Credentials
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// Authenticate the administrator
	user, accessToken, err := h.authService.Authenticate(r.Context(), &creds)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// Set the access token as an HTTP-only cookie for browser clients;
	// API clients use the Authorization header instead
	ttl := h.authService.TokenTTL()
	secure := r.TLS != nil || !strings.Contains(r.Host, "localhost")
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})

	// Return the access token and administrator info
	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"user":         user,
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(ttl.Seconds()),
	})
}

// Logout clears the authentication cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"message": "Successfully logged out",
	})
}

// Me returns the authenticated administrator's account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	// Get the account
	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// Return the account
	utils.JSON(w, constants.StatusOK, user)
}
