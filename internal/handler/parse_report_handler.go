package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sva/internal/domain"
	"sva/internal/extractor"
	"sva/internal/middleware"
	"sva/internal/service"
)

// ParseReportHandler serves the stateless parse-report contract used by
// the edge extraction provider. Failures are answered with HTTP 200 and an
// {error, code} body, except missing configuration (500) and bodies that are
// not JSON (400).
type ParseReportHandler struct {
	extractionService service.ExtractionService
}

// NewParseReportHandler creates a new ParseReportHandler.
func NewParseReportHandler(extractionService service.ExtractionService) *ParseReportHandler {
	return &ParseReportHandler{extractionService: extractionService}
}

// Parse handles POST /functions/parse-report
// @Summary Parse a quotation report
// @Description Extract a quotation report without staging it. Defaults to remote extraction.
// @Tags functions
// @Accept json
// @Produce json
// @Param request body UploadExtractionRequest true "Document payload"
// @Success 200 {object} domain.ExtractionResult "Extraction result, or ParseReportError on failure"
// @Failure 400 {object} ParseReportError "Body is not JSON"
// @Failure 500 {object} ParseReportError "Extraction provider not configured"
// @Router /functions/parse-report [post]
func (h *ParseReportHandler) Parse(c *gin.Context) {
	var req UploadExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ParseReportError{Error: "request body must be JSON", Code: "INVALID_REQUEST"})
		return
	}

	mode := domain.ExtractionMode(req.Mode)
	if mode == "" {
		mode = domain.ModeRemote
	}

	out, err := h.extractionService.Parse(c.Request.Context(), &service.UploadInput{
		FileBase64: req.FileBase64,
		Images:     req.Images,
		FileName:   req.FileName,
		Text:       req.Text,
		Mode:       mode,
	})
	if err != nil {
		_, code, msg := MapDomainError(err)
		status := http.StatusOK
		if extractor.KindOf(err) == extractor.KindConfig {
			status = http.StatusInternalServerError
			log.Printf("[%s] parse-report: %v", middleware.GetRequestID(c), err)
		}
		c.JSON(status, ParseReportError{Error: msg, Code: code})
		return
	}

	c.JSON(http.StatusOK, out.Result)
}
