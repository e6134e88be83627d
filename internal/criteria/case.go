// internal/criteria/case.go
package criteria

import (
	"strings"
	"unicode"
)

// Shared case conversion for worker variable normalization. Callers may send
// application facts and criteria in either camelCase or snake_case; all
// internal logic runs on snake_case keys only.

// ToSnakeKey converts a single camelCase key to snake_case.
// Keys already in snake_case pass through unchanged.
func ToSnakeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelKey converts a single snake_case key to camelCase (first letter lower).
func ToCamelKey(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// MapKeysToSnake recursively converts map keys from camelCase to snake_case.
func MapKeysToSnake(obj interface{}) interface{} {
	switch v := obj.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[ToSnakeKey(k)] = MapKeysToSnake(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = MapKeysToSnake(val)
		}
		return out
	default:
		return obj
	}
}

// MapKeysToCamel recursively converts map keys from snake_case to camelCase
// for worker output variables.
func MapKeysToCamel(obj interface{}) interface{} {
	switch v := obj.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[ToCamelKey(k)] = MapKeysToCamel(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = MapKeysToCamel(val)
		}
		return out
	default:
		return obj
	}
}
