package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sva/internal/domain"
	"sva/internal/export"
)

func sampleResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		QuotationNumber: "7731",
		QuotationTitle:  "Cotação Materiais Janeiro",
		Suppliers: []domain.SupplierRecord{
			{
				Name:             "Cirúrgica Alfa",
				CNPJ:             "12.345.678/0001-90",
				Email:            "vendas@alfa.com.br",
				OrderNumber:      "OC-100",
				DeliveryDeadline: "7",
				TotalValue:       850,
				Items: []domain.LineItem{
					{Code: "123", Description: "LUVA PROCEDIMENTO M", Quantity: 1000, Unit: "CX", UnitPrice: 0.85, TotalValue: 850},
				},
			},
			{
				Name:             "Beta/Med [SP]",
				DeliveryDeadline: "5",
				Items: []domain.LineItem{
					{Code: "---", Description: "SERINGA 10ML", Quantity: 2, Unit: "UN", UnitPrice: 1.5},
					{Code: "77", Description: "AGULHA 25X7", Quantity: 3, Unit: "UN", UnitPrice: 0.2, TotalValue: 0.6},
				},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	f, err = export.ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	_, err = export.ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedExportFormat)
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", export.FormatCSV.ContentType())
	assert.Contains(t, export.FormatXLSX.ContentType(), "spreadsheetml")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleResult()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, export.BOM))

	r := csv.NewReader(bytes.NewReader(data[len(export.BOM):]))
	r.Comma = ';'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Cotação", rows[0][0])
	assert.Equal(t, "Valor Total", rows[0][12])

	assert.Equal(t, []string{
		"7731", "Cotação Materiais Janeiro", "Cirúrgica Alfa", "12.345.678/0001-90", "vendas@alfa.com.br",
		"OC-100", "7", "123", "LUVA PROCEDIMENTO M", "1000", "CX", "0.85", "850.00",
	}, rows[1])

	// Missing totals are derived from quantity and unit price.
	assert.Equal(t, "SERINGA 10ML", rows[2][8])
	assert.Equal(t, "3.00", rows[2][12])
	assert.Equal(t, "0.60", rows[3][12])
}

func TestWriteCSV_SupplierWithoutItems(t *testing.T) {
	res := &domain.ExtractionResult{
		QuotationNumber: "1",
		Suppliers:       []domain.SupplierRecord{{Name: "Vazio"}},
	}
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, res))

	lines := strings.Split(strings.TrimSpace(string(buf.Bytes()[len(export.BOM):])), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1;;Vazio;"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SummarySheet, "Cirúrgica Alfa", "Beta Med (SP)"}, f.GetSheetList())

	summary, err := f.GetRows(export.SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cotação", "7731", "Cotação Materiais Janeiro"}, summary[0])
	assert.Equal(t, "Fornecedor", summary[2][0])
	assert.Equal(t, "Cirúrgica Alfa", summary[3][0])
	assert.Equal(t, "1", summary[3][5])
	assert.Equal(t, "Beta/Med [SP]", summary[4][0])
	assert.Equal(t, "2", summary[4][5])

	items, err := f.GetRows("Beta Med (SP)")
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Código", items[0][0])
	assert.Equal(t, "SERINGA 10ML", items[1][1])
	assert.Equal(t, "AGULHA 25X7", items[2][1])
	assert.Equal(t, "Total", items[3][4])
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"resumo": true}

	assert.Equal(t, "ACME", export.SheetName("ACME", used))
	assert.Equal(t, "acme (2)", export.SheetName("acme", used))
	assert.Equal(t, "Resumo (2)", export.SheetName("Resumo", used))
	assert.Equal(t, "Fornecedor", export.SheetName(" / ", used))

	long := export.SheetName(strings.Repeat("Distribuidora ", 5), used)
	assert.LessOrEqual(t, len([]rune(long)), 31)
	assert.True(t, strings.HasPrefix(long, "Distribuidora"))
}

func TestBuildFilename(t *testing.T) {
	name := export.BuildFilename("Cotação 7731", export.FormatCSV)
	assert.True(t, strings.HasPrefix(name, "cotacao_Cota_o_7731_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}
