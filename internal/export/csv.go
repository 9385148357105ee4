package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sva/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row, one row per line item.
var columns = []string{
	"Cotação",
	"Título",
	"Fornecedor",
	"CNPJ",
	"E-mail",
	"Ordem de Compra",
	"Prazo de Entrega (dias)",
	"Código",
	"Descrição",
	"Quantidade",
	"Unidade",
	"Valor Unitário",
	"Valor Total",
}

// Writer wraps csv.Writer for exporting extraction results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w. Fields are separated by
// semicolons, which spreadsheets in pt-BR locales expect.
func NewWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return &Writer{csv: cw}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResult writes one row per line item. Suppliers without items get a
// single row with the item columns left empty.
func (w *Writer) WriteResult(res *domain.ExtractionResult) error {
	for _, s := range res.Suppliers {
		if len(s.Items) == 0 {
			if err := w.csv.Write(supplierRow(res, &s)); err != nil {
				return err
			}
			continue
		}
		for _, it := range s.Items {
			row := supplierRow(res, &s)
			row[7] = it.Code
			row[8] = it.Description
			row[9] = formatNumber(it.Quantity)
			row[10] = it.Unit
			row[11] = formatMoney(it.UnitPrice)
			row[12] = formatMoney(it.ResolveTotal())
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the BOM, the header and every row of res to out.
func WriteCSV(out io.Writer, res *domain.ExtractionResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResult(res); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func supplierRow(res *domain.ExtractionResult, s *domain.SupplierRecord) []string {
	row := make([]string, len(columns))
	row[0] = res.QuotationNumber
	row[1] = res.QuotationTitle
	row[2] = s.Name
	row[3] = s.CNPJ
	row[4] = s.Email
	row[5] = s.OrderNumber
	row[6] = s.DeliveryDeadline
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "cotacao"
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition header.
// Format: cotacao_{sanitized_quotation}_{YYYY-MM-DD}.{ext}
func BuildFilename(quotationNumber string, format Format) string {
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("cotacao_%s_%s.%s", SanitizeFilename(quotationNumber), date, format)
}
