package referral

import (
	"sort"
	"strconv"
	"strings"
)

// The upstream agent occasionally wraps a scalar field in a singleton object
// ({"patient_name": {"value": "Jane"}}). The extractors below unwrap that
// shape so it never leaks into downstream logic. When the wrapper holds more
// than one entry the value under the lexically smallest key wins: Go maps
// iterate in random order, so sorted-key order is the only rule that keeps
// extraction deterministic.

func unwrap(v any) any {
	for {
		m, ok := v.(map[string]any)
		if !ok || len(m) == 0 {
			return v
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		v = m[keys[0]]
	}
}

// extractString returns the scalar under key, or fallback when the key is
// absent or null.
func extractString(payload map[string]any, key, fallback string) string {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return fallback
	}
	switch v := unwrap(raw).(type) {
	case nil:
		return fallback
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fallback
	}
}

// extractBool returns the flag under key, accepting JSON booleans and their
// string spellings.
func extractBool(payload map[string]any, key string, fallback bool) bool {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return fallback
	}
	switch v := unwrap(raw).(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return fallback
	default:
		return fallback
	}
}

// extractFloat returns the numeric value under key and whether one was
// present at all.
func extractFloat(payload map[string]any, key string) (float64, bool) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := unwrap(raw).(type) {
	case float64:
		return v, true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed, true
		}
		return 0, false
	default:
		return 0, false
	}
}
