package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a JSON or YAML config file, merges it over the defaults
// for name, and validates the result. The file's own name field, when set,
// replaces the given name.
func LoadConfig(filename, name string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig(name)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	loaded, err := Parse(data, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}

	cfg.Merge(loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes config data by file extension. ".json" selects JSON; every
// other extension is decoded as YAML, which also accepts JSON documents.
func Parse(data []byte, ext string) (*PipelineConfig, error) {
	var loaded PipelineConfig

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return &loaded, nil
}
