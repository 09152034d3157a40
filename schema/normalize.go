package schema

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultOutput names the sole output of a scalar-returning function when no
// explicit name is given.
const DefaultOutput = "output"

// Tuple is a fixed-length ordered result. Normalize zips its elements
// against the declared output names.
type Tuple []any

var recordType = reflect.TypeFor[map[string]any]()

// Normalize reshapes a returned value into a record keyed by the declared
// output names:
//   - zero declared outputs discard the value
//   - a name → value map (map[string]any or a type defined on it) is used as-is
//   - a Tuple or Go array is zipped against the output names; a length
//     mismatch is a ConfigurationError
//   - a struct whose fields cover every declared output is decomposed
//   - any other value is wrapped under the sole declared output, and is a
//     ConfigurationError when more than one output is declared
//
// Produced values that have a declared type are checked against it.
func Normalize(outputs Schema, value any) (map[string]any, error) {
	if outputs.Len() == 0 {
		return map[string]any{}, nil
	}

	out, err := reshape(outputs, value)
	if err != nil {
		return nil, err
	}

	for _, f := range outputs.fields {
		if v, ok := out[f.Name]; ok && !f.Type.Check(v) {
			return nil, &TypeMismatchError{Field: f.Name, Want: f.Type.String(), Got: typeName(v)}
		}
	}
	return out, nil
}

func reshape(outputs Schema, value any) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		return maps.Clone(v), nil
	case Tuple:
		return zip(outputs, v)
	}

	rv := reflect.ValueOf(value)
	if rv.IsValid() {
		switch {
		case rv.Kind() == reflect.Map && rv.Type().ConvertibleTo(recordType):
			return maps.Clone(rv.Convert(recordType).Interface().(map[string]any)), nil
		case rv.Kind() == reflect.Array:
			values := make([]any, rv.Len())
			for i := range values {
				values[i] = rv.Index(i).Interface()
			}
			return zip(outputs, values)
		}

		if sv, ok := structValue(rv); ok {
			if out, ok := decompose(outputs, sv); ok {
				return out, nil
			}
		}
	}

	if outputs.Len() == 1 {
		return map[string]any{outputs.fields[0].Name: value}, nil
	}
	return nil, &ConfigurationError{
		Reason: fmt.Sprintf("returned %s cannot fill %d declared outputs %v", typeName(value), outputs.Len(), outputs.Names()),
	}
}

func zip(outputs Schema, values []any) (map[string]any, error) {
	if len(values) != outputs.Len() {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("returned %d values for %d declared outputs %v", len(values), outputs.Len(), outputs.Names()),
		}
	}

	out := make(map[string]any, len(values))
	for i, f := range outputs.fields {
		out[f.Name] = values[i]
	}
	return out, nil
}

func structValue(rv reflect.Value) (reflect.Value, bool) {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.Kind() == reflect.Struct
}

func decompose(outputs Schema, sv reflect.Value) (map[string]any, bool) {
	byName := make(map[string]reflect.Value)
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		if name, ok := fieldName(st.Field(i)); ok {
			byName[name] = sv.Field(i)
		}
	}

	out := make(map[string]any, outputs.Len())
	for _, f := range outputs.fields {
		fv, ok := byName[f.Name]
		if !ok {
			return nil, false
		}
		out[f.Name] = fv.Interface()
	}
	return out, true
}

// fieldName returns the output name of an exported struct field: the
// `pipeline` tag when present, otherwise the field name with its first
// letter lowered. A tag of "-" skips the field.
func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", false
	}
	if tag, ok := sf.Tag.Lookup("pipeline"); ok {
		tag, _, _ = strings.Cut(tag, ",")
		switch tag {
		case "-":
			return "", false
		case "":
		default:
			return tag, true
		}
	}
	r, size := utf8.DecodeRuneInString(sf.Name)
	return string(unicode.ToLower(r)) + sf.Name[size:], true
}
