package binder

import (
	"fmt"
	"net/url"
	"strings"
)

// decodeForm parses an urlencoded body. A key that repeats, or that ends in
// "[]", becomes a []any list; any other key maps to its single string.
func decodeForm(body []byte, dst *Payload) error {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	out := make(Payload, len(values))
	for key, vals := range values {
		name, list := strings.CutSuffix(key, "[]")
		if name == "" {
			continue
		}

		if existing, ok := out[name].([]any); ok {
			out[name] = append(existing, toAny(vals)...)
			continue
		}
		if prev, ok := out[name].(string); ok {
			// "services" and "services[]" both present
			out[name] = append([]any{prev}, toAny(vals)...)
			continue
		}

		if list || len(vals) > 1 {
			out[name] = toAny(vals)
			continue
		}
		out[name] = vals[0]
	}

	*dst = out
	return nil
}

func toAny(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
