package node

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a parsed yaml.Node into a configuration tree.
// Document nodes are unwrapped and aliases are followed. Mapping keys must
// be unique scalars.
func FromYAML(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Mapping(), nil
		}
		return FromYAML(y.Content[0])

	case yaml.AliasNode:
		return FromYAML(y.Alias)

	case yaml.MappingNode:
		out := Mapping()
		for i := 0; i+1 < len(y.Content); i += 2 {
			keyNode := y.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: non-scalar mapping key", keyNode.Line)
			}
			key := keyNode.Value
			if out.Has(key) {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, key)
			}
			child, err := FromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(key, child)
		}
		return out, nil

	case yaml.SequenceNode:
		out := Sequence()
		for _, item := range y.Content {
			child, err := FromYAML(item)
			if err != nil {
				return nil, err
			}
			out.Append(child)
		}
		return out, nil

	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return Scalar(v), nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", y.Line, y.Kind)
}

// ToYAML converts the tree back into a yaml.Node, preserving mapping
// key order.
func (n *Node) ToYAML() *yaml.Node {
	switch n.kind {
	case KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range n.entries {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
			out.Content = append(out.Content, key, e.Value.ToYAML())
		}
		return out
	case KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			out.Content = append(out.Content, item.ToYAML())
		}
		return out
	default:
		if n.value == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		out := &yaml.Node{}
		// Encode cannot fail for the scalar types Node stores.
		_ = out.Encode(n.value)
		return out
	}
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (any, error) {
	return n.ToYAML(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	decoded, err := FromYAML(value)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}
