package textutil

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeStringMap flattens a loosely typed JSON object into trimmed string values.
// Entries with empty keys, nested objects or arrays are dropped.
func NormalizeStringMap(values map[string]any) map[string]string {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		str, ok := Scalar(value)
		if !ok {
			continue
		}
		result[trimmedKey] = str
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Scalar renders a JSON scalar (string, number, bool) as a trimmed string.
// It reports false for nil, objects and arrays.
func Scalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), true
	default:
		return "", false
	}
}
