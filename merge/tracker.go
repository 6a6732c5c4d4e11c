package merge

import (
	"sort"
	"sync"

	"pipeconf/node"
)

// Tracker records which documents contributed the value at each path
// during chain folding. Entries at one path form the inheritance chain in
// base-to-derived order; the last entry is the document whose value won.
type Tracker struct {
	mu      sync.Mutex
	current string
	chains  map[string][]string
}

// NewTracker creates an empty provenance tracker.
func NewTracker() *Tracker {
	return &Tracker{chains: make(map[string][]string)}
}

// SetDocument names the document whose values are about to be applied.
// The resolver calls this before recording a base tree and before each
// merge fold.
func (t *Tracker) SetDocument(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = name
}

// RecordTree attributes every leaf of tree to the given document. Used for
// the chain's root document, whose values all arrive unmerged.
func (t *Tracker) RecordTree(name string, tree *node.Node) {
	t.SetDocument(name)
	t.recordTree(tree, node.Path{})
}

// Chain returns the contributing documents for path, base first, or nil.
func (t *Tracker) Chain(path string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	chain := t.chains[path]
	if chain == nil {
		return nil
	}
	out := make([]string, len(chain))
	copy(out, chain)
	return out
}

// Paths returns every recorded path, sorted.
func (t *Tracker) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	paths := make([]string, 0, len(t.chains))
	for p := range t.chains {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (t *Tracker) record(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	chain := t.chains[path]
	if len(chain) > 0 && chain[len(chain)-1] == t.current {
		return
	}
	t.chains[path] = append(chain, t.current)
}

func (t *Tracker) recordTree(n *node.Node, path node.Path) {
	switch n.Kind() {
	case node.KindMapping:
		for _, entry := range n.Entries() {
			t.recordTree(entry.Value, path.Child(entry.Key))
		}
	default:
		t.record(path.String())
	}
}
