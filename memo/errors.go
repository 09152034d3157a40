package memo

import "fmt"

// CacheKeyError reports an input value that cannot key a memo table because
// it is not comparable (slices, maps, functions, or structs containing them).
type CacheKeyError struct {
	Field string
	Type  string
}

func (e *CacheKeyError) Error() string {
	return fmt.Sprintf("cache key error: field %q holds non-comparable %s", e.Field, e.Type)
}
