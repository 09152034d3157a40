package schema

import "reflect"

var tupleType = reflect.TypeFor[Tuple]()

// Infer derives an output schema from a function's static return type t,
// optionally guided by explicit output names. A nil t means the function
// declares no return value.
//
// Without names:
//   - no return → empty schema
//   - a struct (or pointer to struct) with exported fields → one field per
//     member, named as Normalize decomposes them
//   - any other concrete scalar type → one field named DefaultOutput
//   - interfaces, maps, arrays, and Tuple → empty schema
//
// With names:
//   - an array whose length equals the name count → names typed by element
//   - a struct → names typed by the matching struct fields
//   - a single name with a scalar type → that name with the return type
//   - otherwise → names with open types
func Infer(t reflect.Type, names ...string) Schema {
	if t == nil {
		return Names(names...)
	}

	st := structType(t)

	if len(names) > 0 {
		switch {
		case t.Kind() == reflect.Array && t.Len() == len(names):
			fields := make([]Field, len(names))
			for i, n := range names {
				fields[i] = Field{Name: n, Type: Reflect(t.Elem())}
			}
			return New(fields...)
		case st != nil:
			types := structFields(st)
			fields := make([]Field, len(names))
			for i, n := range names {
				fields[i] = Field{Name: n, Type: types.typeOf(n)}
			}
			return New(fields...)
		case len(names) == 1 && scalar(t):
			return New(Field{Name: names[0], Type: Reflect(t)})
		default:
			return Names(names...)
		}
	}

	switch {
	case st != nil:
		return New(structFields(st)...)
	case scalar(t):
		return New(Field{Name: DefaultOutput, Type: Reflect(t)})
	default:
		return Empty()
	}
}

// structType returns the struct type behind t when t is a struct or pointer
// to struct with at least one exported field.
func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || len(structFields(t)) == 0 {
		return nil
	}
	return t
}

type fieldList []Field

func (l fieldList) typeOf(name string) Type {
	for _, f := range l {
		if f.Name == name {
			return f.Type
		}
	}
	return Any
}

func structFields(t reflect.Type) fieldList {
	var fields fieldList
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if name, ok := fieldName(sf); ok {
			fields = append(fields, Field{Name: name, Type: Reflect(sf.Type)})
		}
	}
	return fields
}

func scalar(t reflect.Type) bool {
	if t == tupleType {
		return false
	}
	switch t.Kind() {
	case reflect.Interface, reflect.Map, reflect.Array, reflect.Invalid:
		return false
	}
	return true
}
