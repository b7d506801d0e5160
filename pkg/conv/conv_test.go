package conv

import (
	"reflect"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float64", 3.14, 3.14, true},
		{"float32", float32(2), 2, true},
		{"int", 7, 7, true},
		{"int64", int64(-1), -1, true},
		{"bool true", true, 1, true},
		{"bool false", false, 0, true},
		{"nil", nil, 0, false},
		{"string", "3.14", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ToFloat64(%v) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMapToFloat64(t *testing.T) {
	got := MapToFloat64(map[string]any{"a": 1, "b": 2.5, "skip": "x"})
	want := map[string]float64{"a": 1, "b": 2.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MapToFloat64() = %v, want %v", got, want)
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]string{
		"labelCol":     "y",
		"maxIter":      "200",
		"learningRate": "0.05",
		"keepVersion":  "true",
		"bad":          "???",
	}

	if got := ParamString(params, "labelCol", "label"); got != "y" {
		t.Errorf("ParamString() = %q, want y", got)
	}
	if got := ParamString(params, "absent", "label"); got != "label" {
		t.Errorf("ParamString(absent) = %q, want default", got)
	}
	if got := ParamInt(params, "maxIter", 100); got != 200 {
		t.Errorf("ParamInt() = %d, want 200", got)
	}
	if got := ParamInt(params, "bad", 100); got != 100 {
		t.Errorf("ParamInt(bad) = %d, want default on parse failure", got)
	}
	if got := ParamFloat(params, "learningRate", 0.1); got != 0.05 {
		t.Errorf("ParamFloat() = %v, want 0.05", got)
	}
	if got := ParamBool(params, "keepVersion", false); !got {
		t.Error("ParamBool() = false, want true")
	}
	if got := ParamBool(nil, "keepVersion", false); got {
		t.Error("ParamBool(nil) = true, want default")
	}
}
