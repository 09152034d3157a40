package config

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// DefaultCacheSize bounds each memoized runnable's table when no size is set.
const DefaultCacheSize = 128

var validate = validator.New(validator.WithRequiredStructEnabled())

// PipelineConfig defines configuration for pipeline construction and runs.
//
// The Observer field is a string so configuration can be expressed in files
// and resolved at runtime through the observability registry.
//
// Example JSON:
//
//	{
//	  "name": "orders",
//	  "observer": "slog",
//	  "cache_size": 256,
//	  "batch_limit": 8
//	}
type PipelineConfig struct {
	// Name identifies the pipeline in events, spans, and errors
	Name string `json:"name" yaml:"name" validate:"required"`

	// Observer specifies which observer implementation to use ("noop", "slog", "otel", etc.)
	Observer string `json:"observer" yaml:"observer" validate:"required"`

	// CacheSize is the memo table size for cacheable runnables built with this config
	CacheSize int `json:"cache_size" yaml:"cache_size" validate:"gte=0"`

	// BatchLimit caps concurrent runs in RunBatch (0 = NumCPU)
	BatchLimit int `json:"batch_limit" yaml:"batch_limit" validate:"gte=0"`

	// TracingNil controls OTel span creation. Use Tracing() to access.
	TracingNil *bool `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// Tracing reports whether runs open OTel spans. Defaults to true.
func (c *PipelineConfig) Tracing() bool {
	if c.TracingNil == nil {
		return true
	}
	return *c.TracingNil
}

// Concurrency returns the effective batch concurrency limit.
func (c *PipelineConfig) Concurrency() int {
	if c.BatchLimit > 0 {
		return c.BatchLimit
	}
	return runtime.NumCPU()
}

// DefaultPipelineConfig returns defaults for a named pipeline.
//
// Default values:
//   - Observer: "slog"
//   - CacheSize: 128
//   - BatchLimit: 0 (NumCPU)
//   - Tracing: true
func DefaultPipelineConfig(name string) PipelineConfig {
	tracing := true
	return PipelineConfig{
		Name:       name,
		Observer:   "slog",
		CacheSize:  DefaultCacheSize,
		BatchLimit: 0,
		TracingNil: &tracing,
	}
}

// Merge overrides c with every non-zero value in source. Out-of-range
// values are carried over so Validate can reject them.
func (c *PipelineConfig) Merge(source *PipelineConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.CacheSize != 0 {
		c.CacheSize = source.CacheSize
	}

	if source.BatchLimit != 0 {
		c.BatchLimit = source.BatchLimit
	}

	if source.TracingNil != nil {
		tracing := *source.TracingNil
		c.TracingNil = &tracing
	}
}

// Validate checks the configuration against its declared constraints.
func (c *PipelineConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid pipeline config: %w", err)
	}
	return nil
}
