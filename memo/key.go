package memo

import (
	"fmt"
	"reflect"
)

var anyType = reflect.TypeFor[any]()

// Key identifies one combination of resolved input values. Two keys are
// equal exactly when their values are pairwise equal under ==.
type Key struct {
	values any
}

// NewKey builds a Key from values given in the order of fields. Every value
// must be comparable; the first that is not yields a CacheKeyError naming
// its field.
func NewKey(fields []string, values []any) (Key, error) {
	arr := reflect.New(reflect.ArrayOf(len(values), anyType)).Elem()
	for i := range values {
		v := reflect.ValueOf(&values[i]).Elem()
		if values[i] != nil && !v.Comparable() {
			field := ""
			if i < len(fields) {
				field = fields[i]
			}
			return Key{}, &CacheKeyError{Field: field, Type: fmt.Sprintf("%T", values[i])}
		}
		arr.Index(i).Set(v)
	}
	return Key{values: arr.Interface()}, nil
}
