package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sva/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.OrderStatus
		want     bool
	}{
		{domain.OrderStatusPendingTriage, domain.OrderStatusAwaitingDelivery, true},
		{domain.OrderStatusPendingTriage, domain.OrderStatusDeclined, true},
		{domain.OrderStatusAwaitingDelivery, domain.OrderStatusDeclined, true},
		{domain.OrderStatusAwaitingDelivery, domain.OrderStatusPartialDelivery, true},
		{domain.OrderStatusAwaitingDelivery, domain.OrderStatusFullDelivery, true},
		{domain.OrderStatusPartialDelivery, domain.OrderStatusFullDelivery, true},
		{domain.OrderStatusPartialDelivery, domain.OrderStatusFinalized, true},
		{domain.OrderStatusFullDelivery, domain.OrderStatusFinalized, true},
		{domain.OrderStatusPendingTriage, domain.OrderStatusFinalized, false},
		{domain.OrderStatusPartialDelivery, domain.OrderStatusDeclined, false},
		{domain.OrderStatusFinalized, domain.OrderStatusPendingTriage, false},
		{domain.OrderStatusDeclined, domain.OrderStatusAwaitingDelivery, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatus_Label(t *testing.T) {
	assert.Equal(t, "Triagem", domain.OrderStatusPendingTriage.Label())
	assert.Equal(t, "Aguardando Entrega", domain.OrderStatusAwaitingDelivery.Label())
	assert.Equal(t, "unknown", domain.OrderStatus("unknown").Label())
	assert.False(t, domain.OrderStatus("unknown").Valid())
}

func TestParseProductClass(t *testing.T) {
	c, ok := domain.ParseProductClass("material hospitalar")
	assert.True(t, ok)
	assert.Equal(t, domain.ProductClassMaterialHospitalar, c)

	_, ok = domain.ParseProductClass("Brinquedos")
	assert.False(t, ok)
}

func TestLineItem_ResolveTotal(t *testing.T) {
	explicit := domain.LineItem{Quantity: 3, UnitPrice: 10, TotalValue: 31}
	assert.Equal(t, 31.0, explicit.ResolveTotal())

	computed := domain.LineItem{Quantity: 3, UnitPrice: 10.333}
	assert.Equal(t, 31.0, computed.ResolveTotal())
}

func TestSupplierRecord_ComputeTotal(t *testing.T) {
	s := domain.SupplierRecord{Items: []domain.LineItem{
		{Quantity: 100, UnitPrice: 10.5, TotalValue: 1050},
		{Quantity: 2, UnitPrice: 0.25},
	}}
	assert.Equal(t, 1050.5, s.ComputeTotal())
}

func TestLineItem_HasCode(t *testing.T) {
	assert.True(t, domain.LineItem{Code: "1234"}.HasCode())
	assert.False(t, domain.LineItem{Code: domain.PlaceholderCode}.HasCode())
	assert.False(t, domain.LineItem{Code: "  "}.HasCode())
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678000190", domain.DigitsOnly("12.345.678/0001-90"))
	assert.Equal(t, "", domain.DigitsOnly("abc"))
}

func TestExtraction_DecodeResult(t *testing.T) {
	raw, err := json.Marshal(domain.ExtractionResult{QuotationNumber: "42", Suppliers: []domain.SupplierRecord{}})
	require.NoError(t, err)

	e := &domain.Extraction{Result: raw}
	res, err := e.DecodeResult()
	require.NoError(t, err)
	assert.Equal(t, "42", res.QuotationNumber)

	_, err = (&domain.Extraction{}).DecodeResult()
	assert.ErrorIs(t, err, domain.ErrInvalidExtractionResult)

	_, err = (&domain.Extraction{Result: json.RawMessage(`{bad`)}).DecodeResult()
	assert.ErrorIs(t, err, domain.ErrInvalidExtractionResult)
}

func TestExtractionResult_MarshalsEmptySuppliersAsArray(t *testing.T) {
	b, err := json.Marshal(domain.ExtractionResult{QuotationNumber: "1", Suppliers: []domain.SupplierRecord{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"quotationNumber":"1","suppliers":[]}`, string(b))
}
