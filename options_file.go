package gpujit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseOptions decodes a ProgramOptions record from YAML. Keys use the
// backend's flag spelling (e.g. "gpu-architecture", "maxrregcount").
// Omitted keys leave fields absent, so absent-vs-explicit-false survives a
// round trip through a config file. Unknown keys are rejected, since a
// misspelled flag would otherwise be silently dropped.
func ParseOptions(data []byte) (*ProgramOptions, error) {
	var opts ProgramOptions
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		if errors.Is(err, io.EOF) {
			return &ProgramOptions{}, nil // empty document, all fields absent
		}
		return nil, fmt.Errorf("parse options: %w", err)
	}
	return &opts, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. A scalar is the shorthand for
// a bare macro name; a sequence spells out the components.
func (m *MacroDefinition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		*m = MacroDefinition{name}
		return nil
	}
	var components []string
	if err := value.Decode(&components); err != nil {
		return err
	}
	*m = components
	return nil
}

// LoadOptionsFile reads a ProgramOptions record from a YAML file.
func LoadOptionsFile(path string) (*ProgramOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	return ParseOptions(data)
}
