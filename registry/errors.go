package registry

import "errors"

// Sentinel errors for runnable registries.
var (
	ErrNotFound      = errors.New("runnable not found")
	ErrAlreadyExists = errors.New("runnable already registered")
	ErrEmptyName     = errors.New("runnable name is empty")
	ErrNilRunnable   = errors.New("runnable is nil")
)
