// Package segment implements the local, regex-based extraction of quotation
// reports: supplier blocks are delimited by the "Fornecedor" anchor and line
// items are recovered by pivoting on unit-of-measure tokens.
package segment

import (
	"regexp"
	"strings"
	"unicode"

	"sva/internal/domain"
)

var (
	reQuotationLabeled = regexp.MustCompile(`(?i)cota[cç][aã]o[^\d\n]{0,12}(\d+)`)
	reQuotationHash    = regexp.MustCompile(`#(\d+)`)
	reDigits           = regexp.MustCompile(`\d+`)
	reTitle            = regexp.MustCompile(`(?i)t[ií]tulo[ \t]*:?[ \t]*([^\n]+)`)
	reSupplierAnchor   = regexp.MustCompile(`(?i)\bfornecedor\b[ \t]*:?[ \t]*`)
	reCNPJ             = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
	reOrderNumber      = regexp.MustCompile(`(?i)\b(?:OC|O\.C\.|ordem de compra)[ \t]*(?:n[º°o]\.?[ \t]*)?[:#]?[ \t]*(\d+)`)
	reDeadline         = regexp.MustCompile(`(?i)(\d+)\s*dias`)
	reEmail            = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	reTrailingLabel    = regexp.MustCompile(`(?i)[\s\-|,;]*\b(?:cnpj|e-?mail|oc|o\.c\.|ordem de compra|dados do fornecedor|telefone|tel|prazo)\b.*$`)
	reCode             = regexp.MustCompile(`^\d+$`)
)

// RejectedLine is a candidate item row the engine could not accept.
type RejectedLine struct {
	Supplier string `json:"supplier"`
	Line     string `json:"line"`
	Reason   string `json:"reason"`
}

// Report is the outcome of one local extraction. Rejected never affects Result.
type Report struct {
	Result   *domain.ExtractionResult
	Rejected []RejectedLine
}

// Engine extracts supplier records from the raw text of a quotation report.
type Engine struct {
	units map[string]bool
}

// NewEngine creates an Engine recognising the default unit-of-measure set.
func NewEngine() *Engine {
	return NewEngineWithUnits(DefaultUnits)
}

// NewEngineWithUnits creates an Engine recognising the given unit tokens.
func NewEngineWithUnits(units []string) *Engine {
	set := make(map[string]bool, len(units))
	for _, u := range units {
		set[strings.ToUpper(u)] = true
	}
	return &Engine{units: set}
}

// Extract parses text into an ExtractionResult. It never fails: text the
// heuristics cannot interpret yields an empty supplier list.
func (e *Engine) Extract(text, fileName string) *Report {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	res := &domain.ExtractionResult{
		QuotationNumber: QuotationNumber(text, fileName),
		QuotationTitle:  quotationTitle(text),
		Suppliers:       []domain.SupplierRecord{},
	}
	rep := &Report{Result: res}

	blocks := reSupplierAnchor.Split(text, -1)
	for _, block := range blocks[1:] {
		rec, rejected := e.parseBlock(block)
		rep.Rejected = append(rep.Rejected, rejected...)
		if rec != nil {
			res.Suppliers = append(res.Suppliers, *rec)
		}
	}

	if len(res.Suppliers) == 0 {
		res.Suppliers = cnpjPlaceholders(text)
	}
	return rep
}

// QuotationNumber finds the quotation number in text, falling back to the
// first digit run of fileName and then to the sentinel.
func QuotationNumber(text, fileName string) string {
	for _, re := range []*regexp.Regexp{reQuotationLabeled, reQuotationHash} {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	if d := reDigits.FindString(fileName); d != "" {
		return d
	}
	return domain.SentinelQuotationNumber
}

func quotationTitle(text string) string {
	if m := reTitle.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}
	return domain.DefaultQuotationTitle
}

func (e *Engine) parseBlock(block string) (*domain.SupplierRecord, []RejectedLine) {
	lines := strings.Split(block, "\n")

	nameIdx := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, nil
	}

	nameLine, firstRow := e.splitNameLine(lines[nameIdx])
	rec := &domain.SupplierRecord{
		Name:             supplierName(nameLine),
		CNPJ:             reCNPJ.FindString(block),
		Email:            reEmail.FindString(block),
		DeliveryDeadline: domain.DefaultDeliveryDeadline,
		Items:            []domain.LineItem{},
	}
	if m := reOrderNumber.FindStringSubmatch(block); m != nil {
		rec.OrderNumber = m[1]
	}
	if m := reDeadline.FindStringSubmatch(block); m != nil {
		rec.DeliveryDeadline = m[1]
	}

	rows := lines[nameIdx+1:]
	if firstRow != "" {
		rows = append([]string{firstRow}, rows...)
	}

	var rejected []RejectedLine
	for _, l := range rows {
		item, reason, candidate := e.parseRow(l)
		switch {
		case item != nil:
			rec.Items = append(rec.Items, *item)
		case candidate:
			rejected = append(rejected, RejectedLine{Supplier: rec.Name, Line: strings.TrimSpace(l), Reason: reason})
		}
	}

	if len(rec.Items) == 0 && rec.CNPJ == "" {
		return nil, rejected
	}
	if rec.Name == "" {
		rec.Name = domain.PlaceholderSupplierName
	}
	rec.TotalValue = rec.ComputeTotal()
	return rec, rejected
}

// supplierName cleans the first line of a supplier block.
func supplierName(line string) string {
	s := reCNPJ.ReplaceAllString(line, "")
	s = reTrailingLabel.ReplaceAllString(s, "")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("-–|,;:.", r)
	})
}

// splitNameLine separates an item row written on the same line as the
// supplier name. The row starts at the first numeric code token after the name.
func (e *Engine) splitNameLine(line string) (name, row string) {
	if _, _, candidate := e.parseRow(line); !candidate {
		return line, ""
	}
	tokens := strings.Fields(line)
	for k := 1; k < len(tokens)-1; k++ {
		if !reCode.MatchString(tokens[k]) {
			continue
		}
		rest := strings.Join(tokens[k:], " ")
		if item, _, _ := e.parseRow(rest); item != nil {
			return strings.Join(tokens[:k], " "), rest
		}
	}
	return line, ""
}

// parseRow tries to read a line item from line. candidate is true when the
// line contains a unit token and so was meant to be an item row.
func (e *Engine) parseRow(line string) (item *domain.LineItem, reason string, candidate bool) {
	tokens := strings.Fields(line)

	unitIdx := -1
	for i := len(tokens) - 1; i >= 1; i-- {
		if !e.isUnit(tokens[i]) {
			continue
		}
		if unitIdx < 0 {
			unitIdx = i
		}
		if _, ok := ParseAmount(tokens[i-1]); ok {
			unitIdx = i
			break
		}
	}
	if unitIdx < 0 {
		return nil, "", false
	}

	qty, ok := ParseAmount(tokens[unitIdx-1])
	if !ok {
		return nil, "quantity is not numeric", true
	}
	if qty <= 0 {
		return nil, "quantity is not positive", true
	}

	descTokens := tokens[:unitIdx-1]
	code := domain.PlaceholderCode
	if len(descTokens) > 1 && reCode.MatchString(descTokens[0]) {
		code = descTokens[0]
		descTokens = descTokens[1:]
	}
	desc := strings.Trim(strings.Join(descTokens, " "), " -–|")
	if len([]rune(desc)) <= 2 || !strings.ContainsFunc(desc, unicode.IsLetter) {
		return nil, "description too short", true
	}

	var amounts []float64
	for _, tok := range tokens[unitIdx+1:] {
		if !IsCurrency(tok) {
			continue
		}
		if v, ok := ParseAmount(tok); ok {
			amounts = append(amounts, v)
		}
	}

	li := &domain.LineItem{
		Code:        code,
		Description: desc,
		Quantity:    qty,
		Unit:        normalizeUnit(tokens[unitIdx]),
	}
	switch {
	case len(amounts) >= 2:
		li.UnitPrice = amounts[len(amounts)-2]
		li.TotalValue = amounts[len(amounts)-1]
	case len(amounts) == 1:
		li.UnitPrice = amounts[0]
		li.TotalValue = domain.RoundMoney(qty * amounts[0])
	}
	return li, "", true
}

func (e *Engine) isUnit(tok string) bool {
	return e.units[normalizeUnit(tok)]
}

func normalizeUnit(tok string) string {
	return strings.ToUpper(strings.TrimRight(tok, ".,;:"))
}

// cnpjPlaceholders yields one record per distinct CNPJ. A repeated CNPJ names
// the same supplier, and reconciliation never lets two records of one run
// claim the same order.
func cnpjPlaceholders(text string) []domain.SupplierRecord {
	out := []domain.SupplierRecord{}
	seen := map[string]bool{}
	for _, c := range reCNPJ.FindAllString(text, -1) {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, domain.SupplierRecord{
			Name:             domain.PlaceholderSupplierName,
			CNPJ:             c,
			DeliveryDeadline: domain.DefaultDeliveryDeadline,
			Items:            []domain.LineItem{},
		})
	}
	return out
}
