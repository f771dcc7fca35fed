package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SanitizeOptionalFields drops optional keys that are present but empty (null,
// blank string) and coerces numeric strings in number-typed keys, so a response that
// only misbehaves on optionals can still validate. Required keys are never removed.
func SanitizeOptionalFields(schemaName string, doc []byte) ([]byte, []string, error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	optional := map[string]struct{}{}
	for _, k := range optionalFields[schemaName] {
		optional[k] = struct{}{}
	}

	var dropped []string
	var walk func(v any) any
	walk = func(v any) any {
		switch t := v.(type) {
		case map[string]any:
			for k, child := range t {
				if _, ok := optional[k]; ok && isEmpty(child) {
					delete(t, k)
					dropped = append(dropped, k)
					continue
				}
				if str, ok := child.(string); ok {
					if _, numeric := numericFields[k]; numeric {
						t[k] = coerceNumeric(str)
						continue
					}
				}
				t[k] = walk(child)
			}
			return t
		case []any:
			for i := range t {
				t[i] = walk(t[i])
			}
			return t
		default:
			return v
		}
	}
	root = walk(root)

	out, err := json.Marshal(root)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

var numericFields = map[string]struct{}{
	"rank": {}, "spec_match_score": {}, "estimated_quantity": {}, "priority_score": {},
	"quantity": {}, "unit_price": {}, "total_price": {}, "total_cost": {},
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "null")
	}
	return false
}

// coerceNumeric turns "90", "1,500.00" or "$650" into numbers; other strings pass through.
func coerceNumeric(s string) any {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "$")
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	if trimmed == "" {
		return s
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return int64(f)
	}
	return f
}
