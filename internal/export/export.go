// Package export renders extraction results as spreadsheets for the
// procurement team.
package export

import (
	"fmt"
	"io"
	"strings"

	"sva/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ParseFormat resolves a format name. An empty name selects xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, s)
	}
}

// Write renders res in the given format.
func Write(w io.Writer, format Format, res *domain.ExtractionResult) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatXLSX:
		return WriteXLSX(w, res)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}
}
