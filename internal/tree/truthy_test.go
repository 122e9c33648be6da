package tree

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero float", float64(0), false},
		{"zero int", 0, false},
		{"zero uint8", uint8(0), false},
		{"NaN", math.NaN(), false},
		{"negative", -1, true},
		{"empty string", "", false},
		{"string", "0", true},
		{"json number zero", json.Number("0"), false},
		{"json number", json.Number("1.5"), true},
		{"nil pointer", (*int)(nil), false},
		{"empty slice", []any{}, true},
		{"empty map", map[string]any{}, true},
		{"struct", struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.value); got != tt.want {
				t.Errorf("Truthy(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
