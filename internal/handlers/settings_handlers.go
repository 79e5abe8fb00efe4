package handlers

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/registry"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// SettingsHandler handles settings-related routes
type SettingsHandler struct {
	settingsService SettingsServiceInterface
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// requestActor builds the audit attribution for an authenticated request.
func requestActor(r *http.Request) models.Actor {
	email, _ := auth.GetEmail(r)
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return models.Actor{
		Email:     email,
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

// GetCategories returns the known settings categories with display metadata
func (h *SettingsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, constants.StatusOK, h.settingsService.Categories())
}

// GetAllSettings returns the merged settings of every category.
// Sensitive values are always server-redacted in read responses.
func (h *SettingsHandler) GetAllSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetAllSettings(r.Context(), true)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, settings)
}

// GetCategory returns the merged settings of one category
func (h *SettingsHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category := registry.Category(chi.URLParam(r, "category"))

	settings, err := h.settingsService.GetCategorySettings(r.Context(), category, true)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, settings)
}

// UpdateCategory applies a partial update to one category
func (h *SettingsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	_, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	category := registry.Category(chi.URLParam(r, "category"))

	// Decode and validate the request body
	var update models.SettingsUpdate
	if err := utils.DecodeAndValidate(r, &update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// Apply the update
	settings, err := h.settingsService.UpdateCategorySettings(r.Context(), requestActor(r), category, &update)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// Return the updated settings
	utils.JSON(w, constants.StatusOK, settings)
}

// ResetCategory restores one category to its defaults
func (h *SettingsHandler) ResetCategory(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	_, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	category := registry.Category(chi.URLParam(r, "category"))

	// The reason body is optional; an empty body resets without one
	var req models.ResetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := utils.DecodeAndValidate(r, &req); err != nil {
			utils.ErrorFromAppError(w, utils.ParseError(err))
			return
		}
	}

	// Reset the category
	settings, err := h.settingsService.ResetCategory(r.Context(), requestActor(r), category, req.Reason)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// Return the settings after the reset
	utils.JSON(w, constants.StatusOK, settings)
}
