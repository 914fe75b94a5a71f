package predicate

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The helpers below are the evaluator's closed built-in set. They are only
// reachable from this package, never from rule input.

// fieldValue looks a key up in a mapping. A missing key or nil value is the
// absent sentinel, reported through ok=false.
func fieldValue(m map[string]any, key string) (any, bool) {
	value, ok := m[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// fieldOrDefault is fieldValue with a fallback, used when building
// evaluation contexts with empty default sections.
func fieldOrDefault(m map[string]any, key string, def any) any {
	if value, ok := fieldValue(m, key); ok {
		return value
	}
	return def
}

func listContains(items []any, want string) bool {
	return anyMatch(items, func(item any) bool {
		have, ok := toString(item)
		return ok && have == want
	})
}

func caseFold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func countMatch(items []any, match func(any) bool) int {
	n := 0
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}

func anyMatch(items []any, match func(any) bool) bool {
	return countMatch(items, match) > 0
}

func allMatch(items []any, match func(any) bool) bool {
	return len(items) > 0 && countMatch(items, match) == len(items)
}

func toString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		return parseBool(v)
	default:
		return false, false
	}
}

func parseBool(s string) (bool, bool) {
	switch caseFold(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
