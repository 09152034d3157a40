package schema

import "fmt"

// ConfigurationError reports a malformed declaration, or a returned value
// whose shape does not match the declared outputs.
type ConfigurationError struct {
	// Runnable names the declaration at fault, when known
	Runnable string

	// Reason describes what is malformed
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Runnable == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Runnable, e.Reason)
}

// MissingInputError reports a required field that no store, provider, or
// parent scope could supply.
type MissingInputError struct {
	Field string
	Scope string
}

func (e *MissingInputError) Error() string {
	if e.Scope == "" {
		return fmt.Sprintf("missing input %q", e.Field)
	}
	return fmt.Sprintf("missing input %q in scope %s", e.Field, e.Scope)
}

// TypeMismatchError reports a present value that fails its declared type.
type TypeMismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Want, e.Got)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
