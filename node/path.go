package node

import "strings"

// Path is a structural location in a configuration tree: the mapping keys
// walked from the root, joined by dots when rendered. Sequence positions
// are elided so that a path identifies the same structural slot in every
// document, regardless of element order.
type Path []string

// Child returns a new path extended by one segment. The receiver is not
// modified, so sibling branches can share a parent path safely.
func (p Path) Child(segment string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, segment)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Descend walks the tree from n along the given mapping keys.
func Descend(n *Node, keys ...string) (*Node, bool) {
	cur := n
	for _, key := range keys {
		if cur == nil || cur.Kind() != KindMapping {
			return nil, false
		}
		next, ok := cur.Get(key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
