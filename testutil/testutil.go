// Package testutil provides utilities for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"pipeconf/node"
	"pipeconf/registry"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// MustParseYAML parses a YAML snippet into a configuration tree.
func MustParseYAML(t *testing.T, source string) *node.Node {
	t.Helper()

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(source), &root); err != nil {
		t.Fatalf("failed to parse YAML: %v", err)
	}
	tree, err := node.FromYAML(&root)
	if err != nil {
		t.Fatalf("failed to convert YAML: %v", err)
	}
	return tree
}

// BuildRegistry creates a registry holding the given documents, keyed by
// name. Used to inject fake catalogs into resolver tests.
func BuildRegistry(docs map[string]string) *registry.Registry {
	reg := registry.New()
	for name, content := range docs {
		reg.Register(name, []byte(content))
	}
	return reg
}
