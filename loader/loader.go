package loader

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"pipeconf"
	"pipeconf/node"
	"pipeconf/registry"
)

// Reserved top-level document keys. They are extracted into the Document
// and stripped from the tree before any merging happens.
const (
	// KeyFrom names the base document this one derives from.
	KeyFrom = "FROM"

	// KeySchemaVersion declares the schema version the document was
	// written against. Version banners in comments are never consulted.
	KeySchemaVersion = "schema_version"
)

// Document is one loaded configuration document. It is immutable after
// loading; the merge engine always produces new trees.
type Document struct {
	// Name is the name the document was requested under.
	Name string

	// SchemaVersion is the declared schema version, empty when the
	// document declares none (treated as current by the migrator).
	SchemaVersion string

	// Base is the FROM reference, empty for self-sufficient documents.
	Base string

	// Tree is the configuration mapping with reserved keys removed.
	Tree *node.Node

	// Origin records where the content came from.
	Origin registry.Origin
}

// Loader turns document names into Documents.
type Loader struct {
	registry *registry.Registry
}

// New creates a loader backed by the given registry.
func New(reg *registry.Registry) *Loader {
	return &Loader{registry: reg}
}

// Load resolves name, parses its content, and extracts the reserved
// top-level keys. It fails with pipeconf.ErrNotFound for unknown names and
// *pipeconf.ParseError for malformed content. FROM and schema versions are
// extracted but not interpreted; chain resolution belongs to the resolver.
func (l *Loader) Load(name string) (*Document, error) {
	handle, err := l.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := handle.Open()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, parseError(name, err)
	}
	if root.Kind == 0 {
		// Empty document.
		return nil, &pipeconf.ParseError{Name: name, Err: fmt.Errorf("document is empty")}
	}

	tree, err := node.FromYAML(&root)
	if err != nil {
		return nil, parseError(name, err)
	}
	if tree.Kind() != node.KindMapping {
		return nil, &pipeconf.ParseError{
			Name: name,
			Line: root.Line,
			Err:  fmt.Errorf("top-level document must be a mapping, got %s", tree.Kind()),
		}
	}

	doc := &Document{Name: name, Tree: tree, Origin: handle.Origin}

	if from, ok := tree.Get(KeyFrom); ok {
		s, isString := from.StringValue()
		if !isString || s == "" {
			return nil, &pipeconf.ParseError{
				Name: name,
				Err:  fmt.Errorf("%s must be a non-empty string", KeyFrom),
			}
		}
		doc.Base = s
		tree.Delete(KeyFrom)
	}

	if ver, ok := tree.Get(KeySchemaVersion); ok {
		s, isString := ver.StringValue()
		if !isString || s == "" {
			return nil, &pipeconf.ParseError{
				Name: name,
				Err:  fmt.Errorf("%s must be a non-empty string", KeySchemaVersion),
			}
		}
		doc.SchemaVersion = s
		tree.Delete(KeySchemaVersion)
	}

	return doc, nil
}

// yamlLine matches the position prefix of go-yaml syntax errors and of
// node.FromYAML structural errors.
var yamlLine = regexp.MustCompile(`line (\d+):`)

func parseError(name string, err error) *pipeconf.ParseError {
	pe := &pipeconf.ParseError{Name: name, Err: err}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}
