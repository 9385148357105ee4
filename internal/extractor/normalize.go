package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"sva/internal/domain"
	"sva/internal/segment"
)

const resultSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["quotationNumber", "suppliers"],
  "properties": {
    "quotationNumber": {"type": "string", "minLength": 1},
    "quotationTitle": {"type": "string"},
    "suppliers": {"type": "array", "items": {"$ref": "#/$defs/supplier"}}
  },
  "$defs": {
    "supplier": {
      "type": "object",
      "required": ["name", "totalValue", "items"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "cnpj": {"type": "string"},
        "email": {"type": "string"},
        "orderNumber": {"type": "string"},
        "deliveryDeadline": {"type": "string"},
        "totalValue": {"type": "number", "minimum": 0},
        "items": {"type": "array", "items": {"$ref": "#/$defs/item"}}
      }
    },
    "item": {
      "type": "object",
      "required": ["description", "quantity", "unit", "unitPrice", "totalValue"],
      "properties": {
        "code": {"type": "string"},
        "description": {"type": "string", "minLength": 1},
        "quantity": {"type": "number", "exclusiveMinimum": 0},
        "unit": {"type": "string", "minLength": 1},
        "unitPrice": {"type": "number", "minimum": 0},
        "totalValue": {"type": "number", "minimum": 0}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction_result.json", strings.NewReader(resultSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("extraction_result.json")
	})
	return compiledSchema, schemaErr
}

// Normalize revalidates a provider's JSON answer as an ExtractionResult.
// Loosely typed values are coerced (numeric strings in either locale,
// numbers where strings are expected), missing fields get their defaults,
// and suppliers or items that cannot be salvaged are dropped. A body of the
// form {"error": "..."} is returned as a classified Error.
func Normalize(provider string, raw []byte, fileName string) (*domain.ExtractionResult, error) {
	body := stripCodeFence(raw)
	if len(body) == 0 {
		return nil, NewError(KindMalformed, provider, "empty response", nil)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, NewError(KindMalformed, provider, fmt.Sprintf("invalid JSON (raw: %s)", truncate(string(body), 300)), err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, NewError(KindMalformed, provider, "response is not a JSON object", nil)
	}
	if xErr := errorBody(provider, obj); xErr != nil {
		return nil, xErr
	}

	clean := coerceResult(obj, fileName)

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("extractor.Normalize: %w", err)
	}
	if err := schema.Validate(clean); err != nil {
		return nil, NewError(KindMalformed, provider, "response does not match extraction schema", err)
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("extractor.Normalize: marshaling: %w", err)
	}
	var res domain.ExtractionResult
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, NewError(KindMalformed, provider, "decoding normalized result", err)
	}
	return &res, nil
}

// errorBody recognises the {"error": "...", "code": "..."} failure shape.
func errorBody(provider string, obj map[string]any) *Error {
	v, ok := obj["error"]
	if !ok || v == nil {
		return nil
	}
	var msg string
	switch e := v.(type) {
	case string:
		msg = e
	case map[string]any:
		msg = asString(e["message"])
		if code := asString(e["code"]); code != "" {
			msg = code + ": " + msg
		}
	default:
		msg = asString(e)
	}
	if msg == "" {
		return nil
	}

	kind := KindUpstream
	if code := asString(obj["code"]); code != "" {
		kind = ClassifyMessage(code)
	}
	if kind == KindUpstream {
		kind = ClassifyMessage(msg)
	}
	return NewError(kind, provider, msg, nil)
}

func coerceResult(obj map[string]any, fileName string) map[string]any {
	qn := asString(obj["quotationNumber"])
	if qn == "" {
		qn = segment.QuotationNumber("", fileName)
	}
	title := asString(obj["quotationTitle"])
	if title == "" {
		title = domain.DefaultQuotationTitle
	}

	suppliers := []any{}
	list, _ := obj["suppliers"].([]any)
	for _, s := range list {
		so, ok := s.(map[string]any)
		if !ok {
			continue
		}
		suppliers = append(suppliers, coerceSupplier(so))
	}

	return map[string]any{
		"quotationNumber": qn,
		"quotationTitle":  title,
		"suppliers":       suppliers,
	}
}

func coerceSupplier(so map[string]any) map[string]any {
	name := asString(so["name"])
	if name == "" {
		name = domain.PlaceholderSupplierName
	}
	deadline := asString(so["deliveryDeadline"])
	if deadline == "" {
		deadline = domain.DefaultDeliveryDeadline
	}

	items := []any{}
	var sum float64
	list, _ := so["items"].([]any)
	for _, it := range list {
		im, ok := it.(map[string]any)
		if !ok {
			continue
		}
		li, ok := coerceItem(im)
		if !ok {
			continue
		}
		sum += li["totalValue"].(float64)
		items = append(items, li)
	}

	total, ok := asNumber(so["totalValue"])
	if !ok || total <= 0 {
		total = domain.RoundMoney(sum)
	}

	return map[string]any{
		"name":             name,
		"cnpj":             asString(so["cnpj"]),
		"email":            asString(so["email"]),
		"orderNumber":      asString(so["orderNumber"]),
		"deliveryDeadline": deadline,
		"totalValue":       total,
		"items":            items,
	}
}

func coerceItem(im map[string]any) (map[string]any, bool) {
	desc := asString(im["description"])
	qty, ok := asNumber(im["quantity"])
	if desc == "" || !ok || qty <= 0 {
		return nil, false
	}
	code := asString(im["code"])
	if code == "" {
		code = domain.PlaceholderCode
	}
	unit := strings.ToUpper(asString(im["unit"]))
	if unit == "" {
		unit = "UN"
	}
	price, _ := asNumber(im["unitPrice"])
	if price < 0 {
		price = 0
	}
	total, _ := asNumber(im["totalValue"])
	if total < 0 {
		total = 0
	}
	li := domain.LineItem{Quantity: qty, UnitPrice: price, TotalValue: total}

	return map[string]any{
		"code":        code,
		"description": desc,
		"quantity":    qty,
		"unit":        unit,
		"unitPrice":   price,
		"totalValue":  li.ResolveTotal(),
	}, true
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		return segment.ParseAmount(t)
	default:
		return 0, false
	}
}

// stripCodeFence removes a markdown ```json fence some models wrap around JSON.
func stripCodeFence(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
