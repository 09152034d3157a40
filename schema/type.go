package schema

import "reflect"

// Type checks whether a value conforms to a declared field type.
type Type interface {
	Check(v any) bool
	String() string
}

type anyType struct{}

// Any is the open type. It accepts every value, including nil.
var Any Type = anyType{}

func (anyType) Check(any) bool  { return true }
func (anyType) String() string { return "any" }

// Common Go types.
var (
	String  = TypeOf[string]()
	Int     = TypeOf[int]()
	Float64 = TypeOf[float64]()
	Bool    = TypeOf[bool]()
)

type goType struct {
	t reflect.Type
}

// TypeOf returns the Type for the static type T. The empty interface yields
// Any; other interfaces accept values implementing them.
func TypeOf[T any]() Type {
	return Reflect(reflect.TypeFor[T]())
}

// Reflect returns the Type for t. A nil t or the empty interface yields Any.
func Reflect(t reflect.Type) Type {
	if t == nil || (t.Kind() == reflect.Interface && t.NumMethod() == 0) {
		return Any
	}
	return goType{t: t}
}

func (g goType) Check(v any) bool {
	if v == nil {
		switch g.t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		}
		return false
	}
	return reflect.TypeOf(v).AssignableTo(g.t)
}

func (g goType) String() string {
	return g.t.String()
}
