package espn

import (
	"strconv"
	"strings"
)

// The teams, roster, and standings payloads are structurally unstable
// across sports, so they are probed as loose maps instead of decoded
// into rigid envelopes.

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	out, _ := m[key].(map[string]any)
	return out
}

func getSlice(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	out, _ := m[key].([]any)
	return out
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch value := m[key].(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func getIntPtr(m map[string]any, key string) *int {
	if m == nil {
		return nil
	}
	switch value := m[key].(type) {
	case float64:
		out := int(value)
		return &out
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil
		}
		out := int(parsed)
		return &out
	default:
		return nil
	}
}
