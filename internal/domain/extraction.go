package domain

import (
	"math"
	"strings"
)

const (
	// PlaceholderCode marks a line item whose product code was not found.
	PlaceholderCode = "---"
	// PlaceholderSupplierName names a supplier identified only by its CNPJ.
	PlaceholderSupplierName = "Fornecedor Identificado"
	// DefaultDeliveryDeadline is the delivery promise, in days, assumed when none is found.
	DefaultDeliveryDeadline = "5"
	// SentinelQuotationNumber is used when neither text nor file name yields a quotation number.
	SentinelQuotationNumber = "0000"
	// DefaultQuotationTitle is used when no title is found.
	DefaultQuotationTitle = "Relatório de Cotação"
)

// ExtractionResult is the common output of every extraction strategy.
type ExtractionResult struct {
	QuotationNumber string           `json:"quotationNumber"`
	QuotationTitle  string           `json:"quotationTitle,omitempty"`
	Suppliers       []SupplierRecord `json:"suppliers"`
}

// SupplierRecord is one vendor block of a quotation.
type SupplierRecord struct {
	Name             string     `json:"name"`
	CNPJ             string     `json:"cnpj,omitempty"`
	Email            string     `json:"email,omitempty"`
	OrderNumber      string     `json:"orderNumber,omitempty"`
	DeliveryDeadline string     `json:"deliveryDeadline,omitempty"`
	TotalValue       float64    `json:"totalValue"`
	Items            []LineItem `json:"items"`
}

// LineItem is one product row of a supplier block.
type LineItem struct {
	Code        string  `json:"code,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalValue  float64 `json:"totalValue"`
}

// ResolveTotal returns the explicit total when present, otherwise quantity times unit price.
func (li LineItem) ResolveTotal() float64 {
	if li.TotalValue > 0 {
		return li.TotalValue
	}
	return RoundMoney(li.Quantity * li.UnitPrice)
}

// HasCode reports whether the item carries a real product code.
func (li LineItem) HasCode() bool {
	c := strings.TrimSpace(li.Code)
	return c != "" && c != PlaceholderCode
}

// ComputeTotal sums the resolved totals of all items.
func (s SupplierRecord) ComputeTotal() float64 {
	var total float64
	for _, it := range s.Items {
		total += it.ResolveTotal()
	}
	return RoundMoney(total)
}

// ItemCount returns the number of line items across all suppliers.
func (r *ExtractionResult) ItemCount() int {
	n := 0
	for _, s := range r.Suppliers {
		n += len(s.Items)
	}
	return n
}

// RoundMoney rounds v to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
