package utils

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DecodeTOMLFile decodes the TOML file at path into v.
func DecodeTOMLFile(path string, v any) error {
	if _, err := toml.DecodeFile(path, v); err != nil {
		log.Warnf("TOML parsing error in config file %s: %v. Attempting partial recovery...", path, err)
		return err
	}
	return nil
}

// Sections is a loosely typed TOML document. It salvages the settings of a
// file whose values do not fit the config struct.
type Sections map[string]any

// ParseSections decodes the TOML file at path without a schema.
func ParseSections(path string) (Sections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return Sections(raw), nil
}

// Section returns the table called name.
func (s Sections) Section(name string) (Sections, bool) {
	table, ok := s[name].(map[string]any)
	return Sections(table), ok
}

// Int returns key when it holds an integer.
func (s Sections) Int(key string) (int, bool) {
	v, ok := s[key].(int64)
	return int(v), ok
}

// Float returns key when it holds a number. Integers written without a
// decimal point are accepted.
func (s Sections) Float(key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Text returns key when it holds a string.
func (s Sections) Text(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// Bool returns key when it holds a boolean.
func (s Sections) Bool(key string) (bool, bool) {
	v, ok := s[key].(bool)
	return v, ok
}
