package schema_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/pipeline/schema"
)

func TestShapesAreEquivalent(t *testing.T) {
	fromMap := schema.Map(map[string]schema.Type{"x": schema.Any})
	fromList := schema.Names("x")

	fromString, err := schema.Of("x")
	if err != nil {
		t.Fatalf("Of(string) failed: %v", err)
	}
	fromSlice, err := schema.Of([]string{"x"})
	if err != nil {
		t.Fatalf("Of([]string) failed: %v", err)
	}

	for _, s := range []schema.Schema{fromMap, fromList, fromString, fromSlice} {
		if s.String() != "{x: any}" {
			t.Errorf("expected {x: any}, got %s", s)
		}
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		name    string
		shape   any
		want    []string
		wantErr bool
	}{
		{name: "nil", shape: nil, want: []string{}},
		{name: "schema", shape: schema.Names("a", "b"), want: []string{"a", "b"}},
		{name: "fields", shape: []schema.Field{{Name: "b"}, {Name: "a"}}, want: []string{"b", "a"}},
		{name: "map sorted", shape: map[string]schema.Type{"z": schema.Int, "a": schema.String}, want: []string{"a", "z"}},
		{name: "list", shape: []string{"x", "y"}, want: []string{"x", "y"}},
		{name: "single", shape: "x", want: []string{"x"}},
		{name: "unsupported", shape: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := schema.Of(tt.shape)
			if tt.wantErr {
				var cfgErr *schema.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigurationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := s.Names(); !slices.Equal(got, tt.want) {
				t.Errorf("expected names %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNew_DuplicateReplacesType(t *testing.T) {
	s := schema.New(
		schema.Field{Name: "x", Type: schema.Int},
		schema.Field{Name: "y"},
		schema.Field{Name: "x", Type: schema.String},
	)

	if s.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", s.Len())
	}
	typ, ok := s.Lookup("x")
	if !ok || typ != schema.String {
		t.Errorf("expected x typed string, got %v", typ)
	}
	typ, _ = s.Lookup("y")
	if typ != schema.Any {
		t.Errorf("expected nil type to default to any, got %v", typ)
	}
}

func TestSchema_Err(t *testing.T) {
	if err := schema.Names("x", "y").Err(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := schema.Names("x", " ").Err(); err == nil {
		t.Error("expected error for blank field name, got nil")
	}
}

func TestSchema_Validate(t *testing.T) {
	s := schema.New(
		schema.Field{Name: "x", Type: schema.Int},
		schema.Field{Name: "label"},
	)

	tests := []struct {
		name        string
		record      map[string]any
		wantMissing string
		wantType    string
	}{
		{name: "valid", record: map[string]any{"x": 5, "label": nil}},
		{name: "extra keys ignored", record: map[string]any{"x": 5, "label": "a", "other": true}},
		{name: "missing label", record: map[string]any{"x": 5}, wantMissing: "label"},
		{name: "missing x reported first", record: map[string]any{}, wantMissing: "x"},
		{name: "wrong type", record: map[string]any{"x": "five", "label": 1}, wantType: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.record)

			var missing *schema.MissingInputError
			var mismatch *schema.TypeMismatchError
			switch {
			case tt.wantMissing != "":
				if !errors.As(err, &missing) || missing.Field != tt.wantMissing {
					t.Errorf("expected MissingInputError for %s, got %v", tt.wantMissing, err)
				}
			case tt.wantType != "":
				if !errors.As(err, &mismatch) || mismatch.Field != tt.wantType {
					t.Errorf("expected TypeMismatchError for %s, got %v", tt.wantType, err)
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestSchema_Check(t *testing.T) {
	s := schema.New(schema.Field{Name: "x", Type: schema.Int})

	if err := s.Check("x", 3); err != nil {
		t.Errorf("expected int to pass, got %v", err)
	}
	if err := s.Check("undeclared", "anything"); err != nil {
		t.Errorf("expected undeclared name to pass, got %v", err)
	}

	err := s.Check("x", 3.5)
	var mismatch *schema.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if mismatch.Want != "int" || mismatch.Got != "float64" {
		t.Errorf("expected int/float64, got %s/%s", mismatch.Want, mismatch.Got)
	}
}

func TestSchema_Project(t *testing.T) {
	s := schema.Names("a", "b")
	got := s.Project(map[string]any{"a": 1, "c": 3})

	if len(got) != 1 || got["a"] != 1 {
		t.Errorf("expected {a: 1}, got %v", got)
	}
}

func TestSchema_Union(t *testing.T) {
	a := schema.New(schema.Field{Name: "x", Type: schema.Int}, schema.Field{Name: "y"})
	b := schema.New(schema.Field{Name: "x", Type: schema.String}, schema.Field{Name: "z"})

	u := a.Union(b)
	if got := u.Names(); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Errorf("expected [x y z], got %v", got)
	}
	if typ, _ := u.Lookup("x"); typ != schema.Int {
		t.Errorf("expected receiver type to win, got %v", typ)
	}
	if a.Len() != 2 {
		t.Errorf("expected receiver unchanged, got %d fields", a.Len())
	}
}

func TestSchema_FieldsIsCopy(t *testing.T) {
	s := schema.Names("x")
	fields := s.Fields()
	fields[0].Name = "mutated"

	if !s.Has("x") {
		t.Error("expected schema to be immutable through Fields")
	}
}
