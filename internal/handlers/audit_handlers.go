package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// AuditHandler handles audit trail routes
type AuditHandler struct {
	auditService AuditServiceInterface
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService AuditServiceInterface) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListAuditLog returns a page of audit entries, newest first.
// An optional category query parameter filters the trail.
func (h *AuditHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	_, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	pagination := utils.GetPaginationParams(r)
	category := r.URL.Query().Get(constants.QueryParamCategory)

	entries, total, err := h.auditService.List(r.Context(), category, pagination.Page, pagination.PageSize)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, constants.StatusOK, entries, pagination.Page, pagination.PageSize, total)
}

// RestoreAuditEntry re-applies the old values recorded in one audit entry
func (h *AuditHandler) RestoreAuditEntry(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	_, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	entryID := chi.URLParam(r, "entryID")
	if entryID == "" {
		utils.BadRequest(w, "entryID parameter is required", nil)
		return
	}

	settings, err := h.auditService.Restore(r.Context(), requestActor(r), entryID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, settings)
}
