package ecoguard

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// fields reads typed values out of a decoded map, failing loudly on type mismatches.
type fields struct {
	values map[string]any
	where  string
}

func (f fields) malformed(key, reason string) error {
	return fmt.Errorf("%w: %s: field %q %s", ErrMalformedResult, f.where, key, reason)
}

func (f fields) requiredString(key string) (string, error) {
	value, ok, err := f.optionalString(key)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", f.malformed(key, "is required")
	}

	return value, nil
}

func (f fields) optionalString(key string) (string, bool, error) {
	raw, ok := f.values[key]
	if !ok || raw == nil {
		return "", false, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", false, f.malformed(key, fmt.Sprintf("must be a string, got %T", raw))
	}

	return value, true, nil
}

func (f fields) number(key string) (float64, bool, error) {
	raw, ok := f.values[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	switch value := raw.(type) {
	case float64:
		return value, true, nil
	case float32:
		return float64(value), true, nil
	case int:
		return float64(value), true, nil
	case int64:
		return float64(value), true, nil
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, false, f.malformed(key, "must be a number")
		}

		return parsed, true, nil
	}

	return 0, false, f.malformed(key, fmt.Sprintf("must be a number, got %T", raw))
}

func (f fields) integer(key string) (int, bool, error) {
	value, ok, err := f.number(key)
	if err != nil || !ok {
		return 0, ok, err
	}

	if value != math.Trunc(value) {
		return 0, false, f.malformed(key, "must be an integer")
	}

	return int(value), true, nil
}

func (f fields) integerPtr(key string) (*int, error) {
	value, ok, err := f.integer(key)
	if err != nil || !ok {
		return nil, err
	}

	return &value, nil
}

func (f fields) boolean(key string) (bool, error) {
	raw, ok := f.values[key]
	if !ok || raw == nil {
		return false, nil
	}

	value, ok := raw.(bool)
	if !ok {
		return false, f.malformed(key, fmt.Sprintf("must be a boolean, got %T", raw))
	}

	return value, nil
}

func (f fields) object(key string) (map[string]any, bool, error) {
	raw, ok := f.values[key]
	if !ok || raw == nil {
		return nil, false, nil
	}

	value, ok := raw.(map[string]any)
	if !ok {
		return nil, false, f.malformed(key, fmt.Sprintf("must be an object, got %T", raw))
	}

	return value, true, nil
}

func (f fields) list(key string) ([]any, error) {
	raw, ok := f.values[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch value := raw.(type) {
	case []any:
		return value, nil
	case []map[string]any:
		out := make([]any, len(value))
		for idx := range value {
			out[idx] = value[idx]
		}

		return out, nil
	case []string:
		out := make([]any, len(value))
		for idx := range value {
			out[idx] = value[idx]
		}

		return out, nil
	}

	return nil, f.malformed(key, fmt.Sprintf("must be a list, got %T", raw))
}

func (f fields) stringList(key string) ([]string, error) {
	items, err := f.list(key)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	out := make([]string, 0, len(items))

	for idx, item := range items {
		value, ok := item.(string)
		if !ok {
			return nil, f.malformed(key, fmt.Sprintf("item %d must be a string, got %T", idx, item))
		}

		out = append(out, value)
	}

	return out, nil
}

// timestamp parses an RFC 3339 time. A missing value yields the zero time.
func (f fields) timestamp(key string) (time.Time, error) {
	value, ok, err := f.optionalString(key)
	if err != nil || !ok {
		return time.Time{}, err
	}

	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, f.malformed(key, "must be an RFC 3339 timestamp")
	}

	return parsed, nil
}
