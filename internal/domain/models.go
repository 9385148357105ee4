package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PurchaseOrder is a supplier order persisted from a confirmed extraction.
type PurchaseOrder struct {
	ID                   uuid.UUID   `db:"id" json:"id"`
	QuotationNumber      string      `db:"quotation_number" json:"quotation_number"`
	QuotationTitle       string      `db:"quotation_title" json:"quotation_title"`
	SupplierName         string      `db:"supplier_name" json:"supplier_name"`
	SupplierCNPJ         string      `db:"supplier_cnpj" json:"supplier_cnpj"`
	SupplierEmail        string      `db:"supplier_email" json:"supplier_email"`
	OrderNumber          string      `db:"order_number" json:"order_number"`
	DeliveryDeadline     string      `db:"delivery_deadline" json:"delivery_deadline"`
	ExpectedDeliveryDate *time.Time  `db:"expected_delivery_date" json:"expected_delivery_date,omitempty"`
	HospitalUnit         string      `db:"hospital_unit" json:"hospital_unit"`
	Status               OrderStatus `db:"status" json:"status"`
	TotalValue           float64     `db:"total_value" json:"total_value"`
	ExtractionID         *uuid.UUID  `db:"extraction_id" json:"extraction_id,omitempty"`
	CreatedAt            time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item of a purchase order linked to a catalog product.
type OrderItem struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	OrderID          uuid.UUID  `db:"order_id" json:"order_id"`
	ProductID        *uuid.UUID `db:"product_id" json:"product_id,omitempty"`
	Code             string     `db:"code" json:"code"`
	Description      string     `db:"description" json:"description"`
	Quantity         float64    `db:"quantity" json:"quantity"`
	QuantityReceived float64    `db:"quantity_received" json:"quantity_received"`
	ReceivedAt       *time.Time `db:"received_at" json:"received_at,omitempty"`
	Unit             string     `db:"unit" json:"unit"`
	UnitPrice        float64    `db:"unit_price" json:"unit_price"`
	TotalValue       float64    `db:"total_value" json:"total_value"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// ItemReceipt is the cumulative quantity received for one order item.
type ItemReceipt struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity_received"`
}

// Product is a catalog entry referenced by order items.
type Product struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Code      string       `db:"code" json:"code"`
	Name      string       `db:"name" json:"name"`
	Unit      string       `db:"unit" json:"unit"`
	UnitPrice float64      `db:"unit_price" json:"unit_price"`
	Class     ProductClass `db:"class" json:"class"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Extraction is a staged extraction awaiting human confirmation.
type Extraction struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	FileName     string           `db:"file_name" json:"file_name"`
	ContentType  string           `db:"content_type" json:"content_type"`
	Mode         ExtractionMode   `db:"mode" json:"mode"`
	Status       ExtractionStatus `db:"status" json:"status"`
	StorageKey   string           `db:"storage_key" json:"storage_key,omitempty"`
	PageCount    int              `db:"page_count" json:"page_count"`
	ModelUsed    string           `db:"model_used" json:"model_used,omitempty"`
	Result       json.RawMessage  `db:"result" json:"result,omitempty"`
	Rejected     json.RawMessage  `db:"rejected_lines" json:"rejected_lines,omitempty"`
	Report       json.RawMessage  `db:"report" json:"report,omitempty"`
	ErrorKind    string           `db:"error_kind" json:"error_kind,omitempty"`
	ErrorMessage string           `db:"error_message" json:"error_message,omitempty"`
	ReviewedAt   *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// DecodeResult unmarshals the staged result.
func (e *Extraction) DecodeResult() (*ExtractionResult, error) {
	if len(e.Result) == 0 {
		return nil, ErrInvalidExtractionResult
	}
	var r ExtractionResult
	if err := json.Unmarshal(e.Result, &r); err != nil {
		return nil, ErrInvalidExtractionResult
	}
	return &r, nil
}
