package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnsupportedFileType     = errors.New("unsupported file type")
	ErrFileTooLarge            = errors.New("file exceeds maximum allowed size")
	ErrMissingFile             = errors.New("missing file payload")
	ErrInvalidPayload          = errors.New("file payload is not valid base64")
	ErrUnreadableDocument      = errors.New("document could not be read")
	ErrTooManyPages            = errors.New("document has too many pages")
	ErrInvalidMode             = errors.New("invalid extraction mode")
	ErrUploadFailed            = errors.New("file upload to storage failed")
	ErrOrderNotFound           = errors.New("purchase order not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderItemNotFound       = errors.New("order item not found")
	ErrNothingReceived         = errors.New("no received quantity informed")
	ErrInvalidReceipt          = errors.New("invalid received quantity")
	ErrExtractionNotFound      = errors.New("extraction not found")
	ErrExtractionNotPending    = errors.New("extraction is not pending review")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidExtractionResult = errors.New("extraction result does not match expected format")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
