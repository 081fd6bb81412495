package store

import (
	"encoding/json"
	"math"
)

// Sanitize walks a patch and normalizes values the document store rejects:
// NaN and infinite floats become explicit nulls, and nested maps/slices are
// cleaned recursively. Explicit nils are kept: a null field is how a merge
// write clears a value (reset writes a null profile on purpose).
func Sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Sanitize(val)
		}
		return out
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	default:
		return v
	}
}

// ToDoc converts a domain value to its document representation (a JSON-shaped
// map or slice) so it can be merged field-by-field. A nil input stays nil,
// which the merge write records as an explicit null.
func ToDoc(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
