// Package schema declares the named, typed fields a runnable consumes and
// produces, and reshapes returned values into named output records.
//
// A Schema can be written in three equivalent shapes:
//
//	schema.Map(map[string]schema.Type{"x": schema.Int}) // name → type
//	schema.Names("x", "y")                               // names, open types
//	schema.Names("x")                                    // single name
//
// Schemas are immutable once built; every method returns copies.
package schema

import (
	"fmt"
	"slices"
	"strings"
)

// Field is one named entry of a Schema.
type Field struct {
	Name string
	Type Type
}

// Schema is an ordered set of uniquely named fields.
type Schema struct {
	fields []Field
}

// New builds a Schema from fields in order. A repeated name replaces the
// earlier entry's type in place; a nil type is treated as Any.
func New(fields ...Field) Schema {
	s := Schema{fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		if f.Type == nil {
			f.Type = Any
		}
		if i := s.index(f.Name); i >= 0 {
			s.fields[i].Type = f.Type
			continue
		}
		s.fields = append(s.fields, f)
	}
	return s
}

// Names builds a Schema of open-typed fields.
func Names(names ...string) Schema {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Type: Any}
	}
	return New(fields...)
}

// Map builds a Schema from a name → type mapping, ordered by name.
func Map(types map[string]Type) Schema {
	names := make([]string, 0, len(types))
	for n := range types {
		names = append(names, n)
	}
	slices.Sort(names)

	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Type: types[n]}
	}
	return New(fields...)
}

// Empty returns a Schema with no fields.
func Empty() Schema {
	return Schema{}
}

// Of accepts any of the supported declaration shapes: a Schema, []Field,
// map[string]Type, []string, a single string, or nil for an empty schema.
func Of(shape any) (Schema, error) {
	switch s := shape.(type) {
	case nil:
		return Empty(), nil
	case Schema:
		return s, nil
	case []Field:
		return New(s...), nil
	case map[string]Type:
		return Map(s), nil
	case []string:
		return Names(s...), nil
	case string:
		return Names(s), nil
	default:
		return Schema{}, &ConfigurationError{Reason: fmt.Sprintf("unsupported schema shape %T", shape)}
	}
}

func (s Schema) index(name string) int {
	for i, f := range s.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Err reports a malformed schema, such as a field with an empty name.
func (s Schema) Err() error {
	for i, f := range s.fields {
		if strings.TrimSpace(f.Name) == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("field %d has an empty name", i)}
		}
	}
	return nil
}

func (s Schema) Len() int {
	return len(s.fields)
}

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the fields in declaration order.
func (s Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Lookup returns the declared type of name.
func (s Schema) Lookup(name string) (Type, bool) {
	if i := s.index(name); i >= 0 {
		return s.fields[i].Type, true
	}
	return nil, false
}

func (s Schema) Has(name string) bool {
	return s.index(name) >= 0
}

// Union returns the fields of s followed by the fields of other not already
// declared in s. On a shared name, the type from s is kept.
func (s Schema) Union(other Schema) Schema {
	fields := slices.Clone(s.fields)
	for _, f := range other.fields {
		if s.index(f.Name) < 0 {
			fields = append(fields, f)
		}
	}
	return Schema{fields: fields}
}

// Check verifies v against the declared type of name. Undeclared names
// always pass.
func (s Schema) Check(name string, v any) error {
	t, ok := s.Lookup(name)
	if !ok || t.Check(v) {
		return nil
	}
	return &TypeMismatchError{Field: name, Want: t.String(), Got: typeName(v)}
}

// Validate checks presence and type of every declared field in r, in
// declaration order, returning the first failure.
func (s Schema) Validate(r map[string]any) error {
	for _, f := range s.fields {
		v, ok := r[f.Name]
		if !ok {
			return &MissingInputError{Field: f.Name}
		}
		if !f.Type.Check(v) {
			return &TypeMismatchError{Field: f.Name, Want: f.Type.String(), Got: typeName(v)}
		}
	}
	return nil
}

// Project returns the entries of r whose names are declared in s.
func (s Schema) Project(r map[string]any) map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if v, ok := r[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

func (s Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
