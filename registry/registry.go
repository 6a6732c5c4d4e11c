package registry

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pipeconf"
)

// builtinPresets holds the preset catalog shipped in the binary.
//
//go:embed presets/*.yaml
var builtinPresets embed.FS

// Origin indicates where a document's content comes from.
type Origin string

// Document origins.
const (
	// OriginBuiltin indicates an embedded preset.
	OriginBuiltin Origin = "builtin"

	// OriginFile indicates a file on disk.
	OriginFile Origin = "file"

	// OriginInjected indicates a document registered programmatically,
	// typically a test fake.
	OriginInjected Origin = "injected"
)

// Handle is a loadable reference to one document's content.
type Handle struct {
	Name   string
	Origin Origin
	open   func() ([]byte, error)
}

// Open reads the document's content.
func (h Handle) Open() ([]byte, error) {
	return h.open()
}

// Registry maps document names to loadable sources. Preset names are
// matched exactly and case-sensitively; names that look like filesystem
// paths are read from disk. The catalog is an explicit lookup table so
// tests can construct registries with fake documents.
type Registry struct {
	entries map[string]Handle
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Handle)}
}

// Builtin returns a registry preloaded with the embedded preset catalog.
func Builtin() *Registry {
	r := New()
	files, err := builtinPresets.ReadDir("presets")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic("registry: embedded presets missing: " + err.Error())
	}
	for _, f := range files {
		name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		path := "presets/" + f.Name()
		r.entries[name] = Handle{
			Name:   name,
			Origin: OriginBuiltin,
			open:   func() ([]byte, error) { return builtinPresets.ReadFile(path) },
		}
	}
	return r
}

// Register adds or replaces a document under the given name.
func (r *Registry) Register(name string, data []byte) {
	r.entries[name] = Handle{
		Name:   name,
		Origin: OriginInjected,
		open:   func() ([]byte, error) { return data, nil },
	}
}

// Names returns the registered document names, sorted, with their origins.
func (r *Registry) Names() []Handle {
	handles := make([]Handle, 0, len(r.entries))
	for _, h := range r.entries {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Name < handles[j].Name })
	return handles
}

// Resolve maps a name to a loadable handle. Catalog entries take
// precedence; otherwise a path-like name is resolved against the
// filesystem. A miss fails with pipeconf.ErrNotFound.
func (r *Registry) Resolve(name string) (Handle, error) {
	if h, ok := r.entries[name]; ok {
		return h, nil
	}
	if isPathLike(name) {
		if _, err := os.Stat(name); err == nil {
			return Handle{
				Name:   name,
				Origin: OriginFile,
				open:   func() ([]byte, error) { return os.ReadFile(name) },
			}, nil
		}
	}
	return Handle{}, fmt.Errorf("%q: %w", name, pipeconf.ErrNotFound)
}

func isPathLike(name string) bool {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return true
	}
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}
