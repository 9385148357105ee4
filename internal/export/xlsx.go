package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"sva/internal/domain"
)

// SummarySheet is the first sheet of an exported workbook.
const SummarySheet = "Resumo"

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

var summaryColumns = []any{"Fornecedor", "CNPJ", "E-mail", "Ordem de Compra", "Prazo de Entrega (dias)", "Itens", "Valor Total"}

var itemColumns = []any{"Código", "Descrição", "Quantidade", "Unidade", "Valor Unitário", "Valor Total"}

// WriteXLSX writes res as a workbook with a summary sheet followed by one
// sheet per supplier.
func WriteXLSX(w io.Writer, res *domain.ExtractionResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: creating style: %w", err)
	}

	title := res.QuotationTitle
	if title == "" {
		title = domain.DefaultQuotationTitle
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &[]any{"Cotação", res.QuotationNumber, title}); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	if err := writeHeader(f, SummarySheet, 3, summaryColumns, bold); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for i, s := range res.Suppliers {
		row := []any{s.Name, s.CNPJ, s.Email, s.OrderNumber, s.DeliveryDeadline, len(s.Items), supplierTotal(s)}
		if err := f.SetSheetRow(SummarySheet, cell(1, i+4), &row); err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}

		name := SheetName(s.Name, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export.WriteXLSX: creating sheet %q: %w", name, err)
		}
		if err := writeSupplierSheet(f, name, s, bold); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: writing workbook: %w", err)
	}
	return nil
}

func writeSupplierSheet(f *excelize.File, sheet string, s domain.SupplierRecord, bold int) error {
	if err := writeHeader(f, sheet, 1, itemColumns, bold); err != nil {
		return err
	}
	for i, it := range s.Items {
		row := []any{it.Code, it.Description, it.Quantity, it.Unit, it.UnitPrice, it.ResolveTotal()}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &row); err != nil {
			return fmt.Errorf("export.WriteXLSX: %w", err)
		}
	}
	totalRow := len(s.Items) + 2
	if err := f.SetSheetRow(sheet, cell(5, totalRow), &[]any{"Total", supplierTotal(s)}); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	_ = f.SetColWidth(sheet, "B", "B", 60)
	return nil
}

func writeHeader(f *excelize.File, sheet string, row int, cols []any, style int) error {
	if err := f.SetSheetRow(sheet, cell(1, row), &cols); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell(1, row), cell(len(cols), row), style); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	return nil
}

func supplierTotal(s domain.SupplierRecord) float64 {
	if s.TotalValue > 0 {
		return s.TotalValue
	}
	return s.ComputeTotal()
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// sheetNameReplacer drops the characters Excel forbids in sheet names.
var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")", "'", "",
)

// SheetName derives a valid sheet name from a supplier name that is not yet
// in used, and records it there. Keys of used are lower case, as Excel
// compares sheet names case-insensitively.
func SheetName(supplier string, used map[string]bool) string {
	base := strings.Join(strings.Fields(sheetNameReplacer.Replace(supplier)), " ")
	if base == "" {
		base = "Fornecedor"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
