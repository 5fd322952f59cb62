package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML form of a Denylist:
//
//	modules: [os, subprocess]
//	calls: [eval, exec]
//	attributes: [__class__]
type File struct {
	Modules    []string `yaml:"modules"`
	Calls      []string `yaml:"calls"`
	Attributes []string `yaml:"attributes"`
}

// LoadFile reads a policy file. The file replaces the built-in sets
// entirely. An empty path returns DefaultDenylist.
func LoadFile(path string) (*Denylist, error) {
	if path == "" {
		return DefaultDenylist(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	return ParseYAML(data)
}

// ParseYAML parses a policy document into a Denylist.
func ParseYAML(data []byte) (*Denylist, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing policy YAML: %w", err)
	}

	d, err := NewDenylist(f.Modules, f.Calls, f.Attributes)
	if err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return d, nil
}
