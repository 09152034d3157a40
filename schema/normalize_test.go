package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tailored-agentic-units/pipeline/schema"
)

type record map[string]any

type doubled struct {
	X2      int
	Label   string `pipeline:"name"`
	Skipped bool   `pipeline:"-"`
	hidden  int
}

func TestNormalize(t *testing.T) {
	two := schema.Names("a", "b")
	one := schema.Names("x2")

	tests := []struct {
		name      string
		outputs   schema.Schema
		value     any
		want      map[string]any
		wantShape bool
	}{
		{
			name:    "zero outputs discard",
			outputs: schema.Empty(),
			value:   42,
			want:    map[string]any{},
		},
		{
			name:    "map used as-is",
			outputs: two,
			value:   map[string]any{"a": 1, "extra": 2},
			want:    map[string]any{"a": 1, "extra": 2},
		},
		{
			name:    "defined record type used as-is",
			outputs: one,
			value:   record{"x2": 10},
			want:    map[string]any{"x2": 10},
		},
		{
			name:    "tuple zipped",
			outputs: two,
			value:   schema.Tuple{1, "b"},
			want:    map[string]any{"a": 1, "b": "b"},
		},
		{
			name:    "array zipped",
			outputs: two,
			value:   [2]int{3, 4},
			want:    map[string]any{"a": 3, "b": 4},
		},
		{
			name:      "tuple length mismatch",
			outputs:   one,
			value:     schema.Tuple{1, 2},
			wantShape: true,
		},
		{
			name:    "struct decomposed",
			outputs: schema.Names("x2", "name"),
			value:   doubled{X2: 10, Label: "ten"},
			want:    map[string]any{"x2": 10, "name": "ten"},
		},
		{
			name:    "struct pointer decomposed",
			outputs: schema.Names("x2"),
			value:   &doubled{X2: 6},
			want:    map[string]any{"x2": 6},
		},
		{
			name:    "struct not covering outputs wraps under single name",
			outputs: schema.Names("when"),
			value:   time.Unix(0, 0).UTC(),
			want:    map[string]any{"when": time.Unix(0, 0).UTC()},
		},
		{
			name:      "struct not covering several outputs",
			outputs:   schema.Names("x2", "skipped"),
			value:     doubled{X2: 1, Skipped: true},
			wantShape: true,
		},
		{
			name:    "scalar wrapped",
			outputs: one,
			value:   10,
			want:    map[string]any{"x2": 10},
		},
		{
			name:    "slice is a scalar",
			outputs: schema.Names("items"),
			value:   []int{1, 2},
			want:    map[string]any{"items": []int{1, 2}},
		},
		{
			name:    "typed map is a scalar",
			outputs: schema.Names("counts"),
			value:   map[string]int{"a": 1},
			want:    map[string]any{"counts": map[string]int{"a": 1}},
		},
		{
			name:    "nil wrapped",
			outputs: one,
			value:   nil,
			want:    map[string]any{"x2": nil},
		},
		{
			name:      "scalar for several outputs",
			outputs:   two,
			value:     10,
			wantShape: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.Normalize(tt.outputs, tt.value)
			if tt.wantShape {
				var cfgErr *schema.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigurationError, got %v (%v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_TypeChecked(t *testing.T) {
	outputs := schema.New(schema.Field{Name: "x2", Type: schema.Int})

	_, err := schema.Normalize(outputs, "ten")
	var mismatch *schema.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if mismatch.Field != "x2" {
		t.Errorf("expected field x2, got %s", mismatch.Field)
	}
}

func TestNormalize_ClonesMaps(t *testing.T) {
	src := map[string]any{"a": 1}
	got, err := schema.Normalize(schema.Names("a"), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got["a"] = 2
	if src["a"] != 1 {
		t.Error("expected returned map to be independent of the function's map")
	}
}
