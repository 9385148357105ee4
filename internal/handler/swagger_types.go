package handler

import (
	"github.com/google/uuid"

	"sva/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// UploadExtractionRequest represents the extraction upload request body.
// Either fileBase64 or images must be set.
type UploadExtractionRequest struct {
	FileBase64 string   `json:"fileBase64" example:"JVBERi0xLjQK..."`
	Images     []string `json:"images" example:"data:image/png;base64,iVBORw0KGgo..."`
	FileName   string   `json:"fileName" example:"cotacao_4521.pdf"`
	Text       string   `json:"text" example:"FORNECEDOR: Acme Ltda"`
	Mode       string   `json:"mode" example:"local"`
}

// ConfirmExtractionRequest represents the optional body of an extraction confirmation.
type ConfirmExtractionRequest struct {
	Result *domain.ExtractionResult `json:"result"`
}

// UpdateOrderStatusRequest represents the order status update request body.
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required" example:"awaiting_delivery"`
}

// ReceiveItemRequest is the cumulative quantity received for one order item.
type ReceiveItemRequest struct {
	ItemID   uuid.UUID `json:"item_id" example:"7d3f0c6e-2b1a-4c5d-9e8f-0a1b2c3d4e5f"`
	Quantity float64   `json:"quantity_received" example:"40"`
}

// ReceiveOrderRequest represents the delivery receipt request body.
type ReceiveOrderRequest struct {
	Items []ReceiveItemRequest `json:"items" binding:"required"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// ParseReportError is the failure body of the parse-report endpoint.
type ParseReportError struct {
	Error string `json:"error" example:"no readable text found, possibly a scanned document"`
	Code  string `json:"code" example:"EXTRACTION_NO_TEXT"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
