package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/pipeline/record"
)

// readInputs builds the records to run. A file holding a YAML list yields
// one record per entry; otherwise the file's mapping and each name=value
// pair form a single record, pairs taking precedence.
func readInputs(file string, pairs []string) ([]record.Record, error) {
	base := record.Record{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read inputs file: %w", err)
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse inputs file: %w", err)
		}

		if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
			if len(pairs) > 0 {
				return nil, errors.New("--input cannot be combined with a batch inputs file")
			}
			var batch []record.Record
			if err := doc.Decode(&batch); err != nil {
				return nil, fmt.Errorf("failed to decode input batch: %w", err)
			}
			return batch, nil
		}

		if len(doc.Content) > 0 {
			if err := doc.Decode(&base); err != nil {
				return nil, fmt.Errorf("failed to decode inputs: %w", err)
			}
		}
	}

	for _, pair := range pairs {
		name, value, err := parsePair(pair)
		if err != nil {
			return nil, err
		}
		base[name] = value
	}

	return []record.Record{base}, nil
}

// parsePair splits name=value and decodes value as a YAML scalar, so 5 is
// an int, true a bool, and anything unparsable a plain string.
func parsePair(pair string) (string, any, error) {
	name, raw, ok := strings.Cut(pair, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid input %q: expected name=value", pair)
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return name, raw, nil
	}
	return name, value, nil
}
