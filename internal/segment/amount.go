package segment

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reNumericShape   = regexp.MustCompile(`^\d[\d.,]*$`)
	reDotThousands   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reCurrencyShaped = regexp.MustCompile(`^(?:\d{1,3}(?:\.\d{3})+|\d{1,3}(?:,\d{3})+|\d+)[.,]\d{2,4}$`)
)

// ParseAmount parses a quantity or money token written in either pt-BR
// ("1.234,56") or en-US ("1,234.56") notation. Signed, empty or
// non-numeric tokens are rejected.
func ParseAmount(raw string) (float64, bool) {
	s := cleanNumericToken(raw)
	if s == "" || !reNumericShape.MatchString(s) {
		return 0, false
	}
	last := s[len(s)-1]
	if last < '0' || last > '9' {
		return 0, false
	}

	d, err := decimal.NewFromString(normalizeNumericToken(s))
	if err != nil {
		return 0, false
	}
	f, _ := d.Round(4).Float64()
	return f, true
}

// IsCurrency reports whether tok looks like a price or total column value.
func IsCurrency(tok string) bool {
	return reCurrencyShaped.MatchString(cleanNumericToken(tok))
}

func cleanNumericToken(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// normalizeNumericToken rewrites a numeric token so the only separator left
// is a '.' decimal point.
func normalizeNumericToken(s string) string {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		// The right-most separator is the decimal one.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case reDotThousands.MatchString(s):
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}
