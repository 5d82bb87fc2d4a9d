package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsccast/yaml"
	yamlv2 "gopkg.in/yaml.v2"
)

// ParseYAML parses a YAML Spec.
//
// This function uses github.com/jsccast/yaml, which (unlike
// gopkg.in/yaml.v2) gives map[string]interface{} values for nested
// maps.
func ParseYAML(bs []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseJSON parses a JSON Spec.
func ParseJSON(bs []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Parse parses a JSON Spec if the source starts with '{' and a YAML
// Spec otherwise.
func Parse(bs []byte) (*Spec, error) {
	if bytes.HasPrefix(bytes.TrimSpace(bs), []byte("{")) {
		return ParseJSON(bs)
	}
	return ParseYAML(bs)
}

// LoadFile reads and parses the file.  A ".json" file is JSON.
// Anything else is YAML (or JSON, which is mostly YAML anyway).
func LoadFile(filename string) (*Spec, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var s *Spec
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		s, err = ParseJSON(bs)
	default:
		s, err = Parse(bs)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// YAML renders the Spec as YAML.
func (s *Spec) YAML() ([]byte, error) {
	return yamlv2.Marshal(s)
}

// JSON renders the Spec as indented JSON.
func (s *Spec) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
