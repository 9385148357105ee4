package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sva/internal/domain"
	"sva/internal/extractor"
	"sva/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

const (
	documentAdvice = "rescan the document or send it as an image"
	systemAdvice   = "retry later or contact support"
)

// extractionErrors maps extraction failure kinds to HTTP status codes and error codes.
var extractionErrors = map[extractor.ErrorKind]struct {
	status int
	code   string
	msg    string
}{
	extractor.KindConfig:    {http.StatusInternalServerError, "CONFIG_ERROR", "extraction provider is not configured; " + systemAdvice},
	extractor.KindQuota:     {http.StatusTooManyRequests, "QUOTA_EXCEEDED", "extraction provider quota exhausted; " + systemAdvice},
	extractor.KindTooLarge:  {http.StatusUnprocessableEntity, "EXTRACTION_TOO_LARGE", "document is too large to extract in one pass; split it or " + documentAdvice},
	extractor.KindNoText:    {http.StatusUnprocessableEntity, "EXTRACTION_NO_TEXT", "no readable text found, possibly a scanned document; " + documentAdvice},
	extractor.KindMalformed: {http.StatusUnprocessableEntity, "EXTRACTION_MALFORMED", "extraction returned an invalid result; " + systemAdvice},
	extractor.KindTimeout:   {http.StatusGatewayTimeout, "EXTRACTION_TIMEOUT", "extraction provider timed out; " + systemAdvice},
	extractor.KindUpstream:  {http.StatusBadGateway, "EXTRACTION_FAILED", "extraction provider failed; " + systemAdvice},
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	if kind := extractor.KindOf(err); kind != "" {
		if e, ok := extractionErrors[kind]; ok {
			return e.status, e.code, e.msg
		}
	}

	switch {
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "fileBase64 or images is required"
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest, "INVALID_REQUEST", "file payload is not valid base64"
	case errors.Is(err, domain.ErrInvalidMode):
		return http.StatusBadRequest, "INVALID_REQUEST", "mode must be 'local' or 'remote'"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnreadableDocument):
		return http.StatusUnprocessableEntity, "UNREADABLE_DOCUMENT", "document could not be read; " + documentAdvice
	case errors.Is(err, domain.ErrTooManyPages):
		return http.StatusUnprocessableEntity, "EXTRACTION_TOO_LARGE", "document has too many pages; split it into smaller files"
	case errors.Is(err, domain.ErrExtractionNotFound):
		return http.StatusNotFound, "EXTRACTION_NOT_FOUND", "extraction not found"
	case errors.Is(err, domain.ErrExtractionNotPending):
		return http.StatusConflict, "EXTRACTION_NOT_PENDING", "extraction has already been reviewed"
	case errors.Is(err, domain.ErrInvalidExtractionResult):
		return http.StatusBadRequest, "INVALID_EXTRACTION_RESULT", "extraction result does not match expected format"
	case errors.Is(err, domain.ErrUnsupportedExportFormat):
		return http.StatusBadRequest, "UNSUPPORTED_EXPORT_FORMAT", "unsupported export format; allowed: xlsx, csv"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND", "purchase order not found"
	case errors.Is(err, domain.ErrInvalidOrderStatus):
		return http.StatusBadRequest, "INVALID_STATUS", "unknown order status"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "INVALID_STATUS_TRANSITION", "order cannot move to the requested status"
	case errors.Is(err, domain.ErrOrderItemNotFound):
		return http.StatusNotFound, "ORDER_ITEM_NOT_FOUND", "item does not belong to this order"
	case errors.Is(err, domain.ErrNothingReceived):
		return http.StatusBadRequest, "NOTHING_RECEIVED", "no received quantity informed"
	case errors.Is(err, domain.ErrInvalidReceipt):
		return http.StatusBadRequest, "INVALID_RECEIPT", "received quantities must be zero or positive"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	default:
		return http.StatusInternalServerError, "PERSISTENCE_ERROR", "an internal error occurred; " + systemAdvice
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", middleware.GetRequestID(c), err)
	}
	var xErr *extractor.Error
	if errors.As(err, &xErr) && xErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(xErr.RetryAfter.Seconds())))
	}
	RespondError(c, status, code, msg)
}

// parsePagination reads offset and limit query parameters, capping limit at 100.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
