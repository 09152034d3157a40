package schema

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

type ctyType struct {
	t cty.Type
}

// Cty returns a Type checked against a cty type constraint, as declared in
// HCL pipeline files. cty.DynamicPseudoType yields Any.
//
// Go values are mapped with gocty.ImpliedType: numeric kinds imply number,
// slices imply lists, string-keyed maps imply maps. Values gocty cannot
// type, such as decoded YAML sequences ([]any) and mappings
// (map[string]any), are checked element by element. Constraints containing
// "any" accept any value at that position.
func Cty(t cty.Type) Type {
	if t.Equals(cty.DynamicPseudoType) {
		return Any
	}
	return ctyType{t: t}
}

func (c ctyType) Check(v any) bool {
	if v == nil {
		return false
	}
	if implied, err := gocty.ImpliedType(v); err == nil && implied.Equals(c.t) {
		return true
	}
	return conforms(v, c.t)
}

func (c ctyType) String() string {
	return c.t.FriendlyName()
}

func conforms(v any, t cty.Type) bool {
	if t.Equals(cty.DynamicPseudoType) {
		return true
	}
	if v == nil {
		return false
	}

	switch {
	case t.IsPrimitiveType():
		implied, err := gocty.ImpliedType(v)
		return err == nil && implied.Equals(t)

	case t.IsListType(), t.IsSetType():
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		for i := range rv.Len() {
			if !conforms(rv.Index(i).Interface(), t.ElementType()) {
				return false
			}
		}
		return true

	case t.IsTupleType():
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		elems := t.TupleElementTypes()
		if rv.Len() != len(elems) {
			return false
		}
		for i, et := range elems {
			if !conforms(rv.Index(i).Interface(), et) {
				return false
			}
		}
		return true

	case t.IsMapType():
		rv, ok := stringMap(v)
		if !ok {
			return false
		}
		for _, k := range rv.MapKeys() {
			if !conforms(rv.MapIndex(k).Interface(), t.ElementType()) {
				return false
			}
		}
		return true

	case t.IsObjectType():
		rv, ok := stringMap(v)
		if !ok {
			return false
		}
		for name, at := range t.AttributeTypes() {
			e := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if !e.IsValid() {
				if t.AttributeOptional(name) {
					continue
				}
				return false
			}
			if !conforms(e.Interface(), at) {
				return false
			}
		}
		return true
	}
	return false
}

func stringMap(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return rv, true
}
