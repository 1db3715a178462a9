package referral

import "testing"

func TestExtractString(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]any
		key      string
		fallback string
		want     string
	}{
		{
			name:    "plain scalar",
			payload: map[string]any{"patient_name": "Jane Roe"},
			key:     "patient_name",
			want:    "Jane Roe",
		},
		{
			name:     "absent key uses fallback",
			payload:  map[string]any{},
			key:      "patient_name",
			fallback: "unknown",
			want:     "unknown",
		},
		{
			name:     "null value uses fallback",
			payload:  map[string]any{"patient_name": nil},
			key:      "patient_name",
			fallback: "unknown",
			want:     "unknown",
		},
		{
			name:    "wrapped scalar is unwrapped",
			payload: map[string]any{"patient_name": map[string]any{"value": "Jane Roe"}},
			key:     "patient_name",
			want:    "Jane Roe",
		},
		{
			name: "multi-key wrapper takes lexically smallest key",
			payload: map[string]any{
				"patient_name": map[string]any{"b": "second", "a": "first"},
			},
			key:  "patient_name",
			want: "first",
		},
		{
			name:    "nested wrapper is unwrapped repeatedly",
			payload: map[string]any{"patient_name": map[string]any{"value": map[string]any{"value": "Jane Roe"}}},
			key:     "patient_name",
			want:    "Jane Roe",
		},
		{
			name:    "json number becomes string",
			payload: map[string]any{"patient_id": float64(1042)},
			key:     "patient_id",
			want:    "1042",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractString(tt.payload, tt.key, tt.fallback)
			if got != tt.want {
				t.Fatalf("extractString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBool(t *testing.T) {
	payload := map[string]any{
		"urgent":       true,
		"urgent_str":   "true",
		"urgent_wrap":  map[string]any{"value": true},
		"urgent_junk":  "sort of",
		"urgent_empty": nil,
	}

	if !extractBool(payload, "urgent", false) {
		t.Error("expected true for JSON bool")
	}
	if !extractBool(payload, "urgent_str", false) {
		t.Error("expected true for string spelling")
	}
	if !extractBool(payload, "urgent_wrap", false) {
		t.Error("expected true for wrapped bool")
	}
	if extractBool(payload, "urgent_junk", false) {
		t.Error("expected fallback for junk value")
	}
	if !extractBool(payload, "urgent_empty", true) {
		t.Error("expected fallback for null value")
	}
	if extractBool(payload, "missing", false) {
		t.Error("expected fallback for absent key")
	}
}

func TestExtractFloat(t *testing.T) {
	payload := map[string]any{
		"duration_value":      float64(5),
		"duration_str":        "3.5",
		"duration_wrap":       map[string]any{"value": float64(2)},
		"duration_unparsable": "soon",
	}

	if v, ok := extractFloat(payload, "duration_value"); !ok || v != 5 {
		t.Errorf("expected (5, true), got (%v, %v)", v, ok)
	}
	if v, ok := extractFloat(payload, "duration_str"); !ok || v != 3.5 {
		t.Errorf("expected (3.5, true), got (%v, %v)", v, ok)
	}
	if v, ok := extractFloat(payload, "duration_wrap"); !ok || v != 2 {
		t.Errorf("expected (2, true), got (%v, %v)", v, ok)
	}
	if _, ok := extractFloat(payload, "duration_unparsable"); ok {
		t.Error("expected not-present for unparsable value")
	}
	if _, ok := extractFloat(payload, "missing"); ok {
		t.Error("expected not-present for absent key")
	}
}
