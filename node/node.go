package node

import "fmt"

// Kind identifies which branch of the tagged union a Node holds.
type Kind int

// Node kinds.
const (
	// KindMapping is an ordered collection of unique string keys to child nodes.
	KindMapping Kind = iota

	// KindSequence is an ordered list of child nodes.
	KindSequence

	// KindScalar is a string, number, boolean, or null leaf value.
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindScalar:
		return "scalar"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one key/value pair of a mapping node.
type Entry struct {
	Key   string
	Value *Node
}

// Node is a configuration tree node: a mapping, a sequence, or a scalar.
// Mappings preserve insertion order, which keeps resolved output diffable
// against the documents it was merged from.
type Node struct {
	kind    Kind
	entries []Entry // mapping
	items   []*Node // sequence
	value   any     // scalar: string, int64, float64, bool, or nil
}

// Mapping returns a new empty mapping node.
func Mapping() *Node {
	return &Node{kind: KindMapping}
}

// Sequence returns a new sequence node holding the given items.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Scalar returns a new scalar node. Integer and float values are
// normalized to int64 and float64.
func Scalar(v any) *Node {
	switch t := v.(type) {
	case int:
		v = int64(t)
	case int32:
		v = int64(t)
	case uint:
		v = int64(t)
	case uint32:
		v = int64(t)
	case uint64:
		v = int64(t)
	case float32:
		v = float64(t)
	case nil, string, int64, float64, bool:
	default:
		v = fmt.Sprintf("%v", t)
	}
	return &Node{kind: KindScalar, value: v}
}

// String returns a new string scalar.
func String(s string) *Node { return Scalar(s) }

// Int returns a new integer scalar.
func Int(i int64) *Node { return Scalar(i) }

// Float returns a new float scalar.
func Float(f float64) *Node { return Scalar(f) }

// Bool returns a new boolean scalar.
func Bool(b bool) *Node { return Scalar(b) }

// Null returns a new null scalar.
func Null() *Node { return Scalar(nil) }

// Kind reports which branch of the union this node holds.
func (n *Node) Kind() Kind { return n.kind }

// Value returns the scalar value. It is nil for null scalars and for
// non-scalar nodes.
func (n *Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.value
}

// IsNull reports whether the node is a null scalar.
func (n *Node) IsNull() bool {
	return n.kind == KindScalar && n.value == nil
}

// StringValue returns the scalar's string value, and whether it is a string.
func (n *Node) StringValue() (string, bool) {
	if n.kind != KindScalar {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// Entries returns the mapping's key/value pairs in insertion order.
// Nil for non-mappings.
func (n *Node) Entries() []Entry {
	if n.kind != KindMapping {
		return nil
	}
	return n.entries
}

// Keys returns the mapping's keys in insertion order. Nil for non-mappings.
func (n *Node) Keys() []string {
	if n.kind != KindMapping {
		return nil
	}
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the mapping value for key and whether it is present.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != KindMapping {
		return nil, false
	}
	for _, e := range n.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether the mapping contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set stores value under key. An existing key keeps its position; a new
// key is appended. Set panics on non-mappings, which would be a
// programming error rather than bad input.
func (n *Node) Set(key string, value *Node) {
	if n.kind != KindMapping {
		panic("node: Set on " + n.kind.String())
	}
	for i, e := range n.entries {
		if e.Key == key {
			n.entries[i].Value = value
			return
		}
	}
	n.entries = append(n.entries, Entry{Key: key, Value: value})
}

// Delete removes key from the mapping and reports whether it was present.
func (n *Node) Delete(key string) bool {
	if n.kind != KindMapping {
		return false
	}
	for i, e := range n.entries {
		if e.Key == key {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Rename changes a key in place, preserving its position. It reports
// whether the old key was present. Renaming onto an existing key is
// refused.
func (n *Node) Rename(old, new string) bool {
	if n.kind != KindMapping || n.Has(new) {
		return false
	}
	for i, e := range n.entries {
		if e.Key == old {
			n.entries[i].Key = new
			return true
		}
	}
	return false
}

// Items returns the sequence's elements. Nil for non-sequences.
func (n *Node) Items() []*Node {
	if n.kind != KindSequence {
		return nil
	}
	return n.items
}

// Append adds items to the end of the sequence.
func (n *Node) Append(items ...*Node) {
	if n.kind != KindSequence {
		panic("node: Append on " + n.kind.String())
	}
	n.items = append(n.items, items...)
}

// Len returns the number of mapping entries or sequence items, and 0 for
// scalars.
func (n *Node) Len() int {
	switch n.kind {
	case KindMapping:
		return len(n.entries)
	case KindSequence:
		return len(n.items)
	}
	return 0
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	switch n.kind {
	case KindMapping:
		out := &Node{kind: KindMapping, entries: make([]Entry, len(n.entries))}
		for i, e := range n.entries {
			out.entries[i] = Entry{Key: e.Key, Value: e.Value.Clone()}
		}
		return out
	case KindSequence:
		out := &Node{kind: KindSequence, items: make([]*Node, len(n.items))}
		for i, item := range n.items {
			out.items[i] = item.Clone()
		}
		return out
	default:
		return &Node{kind: KindScalar, value: n.value}
	}
}

// Equal reports deep structural equality, including mapping key order.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindMapping:
		if len(n.entries) != len(other.entries) {
			return false
		}
		for i, e := range n.entries {
			o := other.entries[i]
			if e.Key != o.Key || !e.Value.Equal(o.Value) {
				return false
			}
		}
		return true
	case KindSequence:
		if len(n.items) != len(other.items) {
			return false
		}
		for i, item := range n.items {
			if !item.Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(n.value, other.value)
	}
}

func scalarEqual(a, b any) bool {
	if ai, ok := a.(int64); ok {
		if bf, ok := b.(float64); ok {
			return float64(ai) == bf
		}
	}
	if af, ok := a.(float64); ok {
		if bi, ok := b.(int64); ok {
			return af == float64(bi)
		}
	}
	return a == b
}

// Interface converts the tree to plain Go values: map[string]any for
// mappings (key order is lost), []any for sequences, and the scalar value
// otherwise. Intended for diff output in tests and for JSON-ish consumers.
func (n *Node) Interface() any {
	switch n.kind {
	case KindMapping:
		out := make(map[string]any, len(n.entries))
		for _, e := range n.entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	case KindSequence:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	default:
		return n.value
	}
}
