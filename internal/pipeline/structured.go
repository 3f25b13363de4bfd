package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// stringField reads a trimmed string value from the structured map. Nil and
// non-string values yield "".
func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// decimalField reads a monetary value from the structured map. JSON numbers,
// integers, numeric strings and decimals are accepted; anything else yields
// nil so the pipeline never invents an amount.
func decimalField(m map[string]interface{}, key string) *decimal.Decimal {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	return toDecimal(v)
}

func toDecimal(v interface{}) *decimal.Decimal {
	switch n := v.(type) {
	case decimal.Decimal:
		return &n
	case float64:
		d := decimal.NewFromFloat(n)
		return &d
	case float32:
		d := decimal.NewFromFloat32(n)
		return &d
	case int:
		d := decimal.NewFromInt(int64(n))
		return &d
	case int64:
		d := decimal.NewFromInt(n)
		return &d
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return &d
		}
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return nil
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return &d
		}
	}
	return nil
}
