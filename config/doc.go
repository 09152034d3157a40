// Package config provides configuration structures for pipeline execution.
//
// Configuration follows a defaults-then-merge pattern: DefaultPipelineConfig
// supplies every value, and a partially specified file or struct is merged on
// top with Merge. Only non-zero source values override.
//
//	cfg := config.DefaultPipelineConfig("orders")
//	cfg.Merge(&config.PipelineConfig{CacheSize: 512})
//	p, err := pipeline.FromConfig(cfg)
//
// # Loading Files
//
// LoadConfig reads JSON (.json) or YAML (.yaml, .yml) files:
//
//	name: orders
//	observer: slog
//	cache_size: 256
//	batch_limit: 8
//	tracing: false
//
// # Boolean Fields with Non-False Defaults
//
// For boolean fields where the default is true (PipelineConfig.Tracing), a
// pointer field with a "Nil" suffix is paired with an accessor method:
//
//   - nil: field not specified, accessor returns the default
//   - &false: explicitly disabled
//   - &true: explicitly enabled
//
// A config file that omits the key therefore keeps the default instead of
// unmarshaling to false.
//
// # Validation
//
// Validate checks struct constraints declared with go-playground/validator
// tags. FromConfig and LoadConfig validate before returning.
package config
