package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sva/internal/domain"
	"sva/internal/service"
)

// maxConfirmBody bounds the corrected result accepted on confirmation.
const maxConfirmBody = 5 << 20

// ExtractionHandler handles extraction staging and review endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Upload handles POST /api/v1/extractions
// @Summary Upload a quotation report
// @Description Render a PDF or image upload, extract suppliers and items, and stage the result for review
// @Tags extractions
// @Accept json
// @Produce json
// @Param request body UploadExtractionRequest true "Document payload"
// @Success 201 {object} Response{data=domain.Extraction} "Extraction staged"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Document could not be extracted"
// @Failure 429 {object} ErrorResponseBody "Provider quota exhausted"
// @Failure 504 {object} ErrorResponseBody "Provider timed out"
// @Router /extractions [post]
func (h *ExtractionHandler) Upload(c *gin.Context) {
	var req UploadExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON with fileBase64 or images")
		return
	}

	ext, err := h.extractionService.Upload(c.Request.Context(), &service.UploadInput{
		FileBase64: req.FileBase64,
		Images:     req.Images,
		FileName:   req.FileName,
		Text:       req.Text,
		Mode:       domain.ExtractionMode(req.Mode),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ext)
}

// List handles GET /api/v1/extractions
// @Summary List extractions
// @Tags extractions
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Extraction,meta=PagMeta} "List of extractions"
// @Router /extractions [get]
func (h *ExtractionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	exts, total, err := h.extractionService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, exts, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/extractions/:id
// @Summary Get extraction by ID
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID (UUID)"
// @Success 200 {object} Response{data=domain.Extraction} "Extraction details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Router /extractions/{id} [get]
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "extraction")
	if !ok {
		return
	}

	ext, err := h.extractionService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ext)
}

// Confirm handles POST /api/v1/extractions/:id/confirm
// @Summary Confirm an extraction
// @Description Reconcile the staged (or corrected) result into purchase orders, items and products
// @Tags extractions
// @Accept json
// @Produce json
// @Param id path string true "Extraction ID (UUID)"
// @Param request body ConfirmExtractionRequest false "Optional corrected result"
// @Success 200 {object} Response{data=service.ConfirmOutput} "Reconciliation report"
// @Failure 400 {object} ErrorResponseBody "Invalid corrected result"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Failure 409 {object} ErrorResponseBody "Extraction already reviewed"
// @Router /extractions/{id}/confirm [post]
func (h *ExtractionHandler) Confirm(c *gin.Context) {
	id, ok := parseID(c, "extraction")
	if !ok {
		return
	}

	var corrected *domain.ExtractionResult
	if c.Request.Body != nil {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxConfirmBody))
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			var req ConfirmExtractionRequest
			if err := json.Unmarshal(body, &req); err != nil {
				RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON of the form {\"result\": {...}}")
				return
			}
			corrected = req.Result
		}
	}

	out, err := h.extractionService.Confirm(c.Request.Context(), id, corrected)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// Decline handles POST /api/v1/extractions/:id/decline
// @Summary Decline an extraction
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID (UUID)"
// @Success 200 {object} Response{data=domain.Extraction} "Extraction declined"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Failure 409 {object} ErrorResponseBody "Extraction already reviewed"
// @Router /extractions/{id}/decline [post]
func (h *ExtractionHandler) Decline(c *gin.Context) {
	id, ok := parseID(c, "extraction")
	if !ok {
		return
	}

	ext, err := h.extractionService.Decline(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ext)
}

// Export handles GET /api/v1/extractions/:id/export
// @Summary Export an extraction
// @Description Download the staged result as an xlsx workbook or a CSV file
// @Tags extractions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param id path string true "Extraction ID (UUID)"
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {file} binary "Export file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Router /extractions/{id}/export [get]
func (h *ExtractionHandler) Export(c *gin.Context) {
	id, ok := parseID(c, "extraction")
	if !ok {
		return
	}

	file, err := h.extractionService.Export(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Original handles GET /api/v1/extractions/:id/original
// @Summary Get a download link for the archived original
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID (UUID)"
// @Success 200 {object} Response{data=service.OriginalLink} "Presigned URL"
// @Failure 404 {object} ErrorResponseBody "Extraction or original not found"
// @Router /extractions/{id}/original [get]
func (h *ExtractionHandler) Original(c *gin.Context) {
	id, ok := parseID(c, "extraction")
	if !ok {
		return
	}

	link, err := h.extractionService.OriginalURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, link)
}

// parseID reads the :id path parameter. Returns false if it is not a UUID
// (error response already written).
func parseID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}
