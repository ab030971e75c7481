package binder

import (
	"encoding/json"
	"fmt"
)

// decodeJSON accepts a single JSON object. Arrays, scalars and trailing
// data are rejected.
func decodeJSON(body []byte, dst *Payload) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: expected an object, got %T", ErrInvalidJSON, raw)
	}

	*dst = Payload(obj)
	return nil
}
