package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dotmac-platform/settings-service/internal/auth"
	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/models"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// maxImportBody caps the accepted import payload size.
const maxImportBody = 1 << 20

// TransferHandler handles settings export and import routes
type TransferHandler struct {
	transferService TransferServiceInterface
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService TransferServiceInterface) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// Export serializes the selected categories and sends them as a file
// download. The format, category selection, and sensitivity flag come from
// query parameters.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	_, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	query := r.URL.Query()
	includeSensitive, _ := strconv.ParseBool(query.Get(constants.QueryParamIncludeSensitive))

	options := models.ExportOptions{
		Format:           query.Get(constants.QueryParamFormat),
		Selection:        models.ParseSelection(query.Get(constants.QueryParamCategories)),
		IncludeSensitive: includeSensitive,
	}

	result, err := h.transferService.Export(r.Context(), options)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.DownloadFile(w, result.Data, result.Filename, result.ContentType)
}

// Import runs the import pipeline on the request body. The response is
// always the validation result: parse and validation problems are reported
// inside it with a 200 status, not as transport errors.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	// Get the user ID from the context
	_, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	raw, err := readImportPayload(w, r)
	if err != nil {
		utils.BadRequest(w, "Failed to read import payload", nil)
		return
	}

	query := r.URL.Query()
	validateOnly, _ := strconv.ParseBool(query.Get(constants.QueryParamValidateOnly))

	options := models.ImportOptions{
		Selection:    models.ParseSelection(query.Get(constants.QueryParamCategories)),
		ValidateOnly: validateOnly,
	}

	result, err := h.transferService.Import(r.Context(), requestActor(r), raw, options)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, result)
}

// readImportPayload accepts the settings document either as the raw request
// body or as a multipart upload under the "file" field. The picker on the
// dashboard sends multipart; API clients post the document directly.
func readImportPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportBody); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxImportBody))
	}

	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
}
