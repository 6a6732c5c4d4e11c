package resolve

import (
	"errors"
	"fmt"
	"log/slog"

	"pipeconf"
	"pipeconf/loader"
	"pipeconf/merge"
	"pipeconf/migrate"
	"pipeconf/node"
	"pipeconf/validate"
)

// DefaultMaxDepth bounds the FROM chain. Real configurations are a handful
// of documents deep; anything approaching this limit is malformed.
const DefaultMaxDepth = 25

// Options configures a Resolver. Loader is required; everything else
// defaults to the built-in behavior.
type Options struct {
	// Loader turns names into documents. Required.
	Loader *loader.Loader

	// Migrator upgrades documents to the current schema.
	// Defaults to migrate.Default().
	Migrator *migrate.Migrator

	// Engine merges override trees into base trees.
	// Defaults to merge.New(merge.DefaultPolicy()).
	Engine *merge.Engine

	// Validator checks the final tree. Defaults to validate.Default().
	Validator *validate.Validator

	// MaxDepth bounds the FROM chain. Defaults to DefaultMaxDepth.
	MaxDepth int

	// Tracker, when set, records per-path provenance during folding. The
	// default Engine is wired to it automatically; a custom Engine must be
	// given the same tracker via merge.WithTracker.
	Tracker *merge.Tracker

	// Logger receives resolution progress at debug level.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Resolver folds a document's FROM chain into a single validated tree.
// Each Resolve call is an independent, pure computation over the read-only
// document sources, so concurrent calls on one Resolver are safe as long
// as they do not share a Tracker.
type Resolver struct {
	loader    *loader.Loader
	migrator  *migrate.Migrator
	engine    *merge.Engine
	validator *validate.Validator
	maxDepth  int
	tracker   *merge.Tracker
	logger    *slog.Logger
}

// New creates a resolver. It panics if opts.Loader is nil, which would be
// a programming error.
func New(opts Options) *Resolver {
	if opts.Loader == nil {
		panic("resolve: Options.Loader is required")
	}
	r := &Resolver{
		loader:    opts.Loader,
		migrator:  opts.Migrator,
		engine:    opts.Engine,
		validator: opts.Validator,
		maxDepth:  opts.MaxDepth,
		tracker:   opts.Tracker,
		logger:    opts.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.migrator == nil {
		r.migrator = migrate.Default()
	}
	if r.engine == nil {
		engineOpts := []merge.Option{merge.WithLogger(r.logger)}
		if r.tracker != nil {
			engineOpts = append(engineOpts, merge.WithTracker(r.tracker))
		}
		r.engine = merge.New(merge.DefaultPolicy(), engineOpts...)
	}
	if r.validator == nil {
		r.validator = validate.Default()
	}
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}
	return r
}

// Resolved is the final outcome of chain folding: a schema-current,
// validated configuration tree. The resolver keeps no reference to it
// after returning.
type Resolved struct {
	// Name is the document that was requested.
	Name string

	// Tree is the fully merged configuration mapping.
	Tree *node.Node

	// Chain lists the folded documents in base-to-derived order; the last
	// entry is Name.
	Chain []string

	tracker *merge.Tracker
}

// Provenance returns the documents that contributed the value at path, in
// base-to-derived order. Nil when no tracker was configured or the path
// was never written.
func (r *Resolved) Provenance(path string) []string {
	if r.tracker == nil {
		return nil
	}
	return r.tracker.Chain(path)
}

// ProvenancePaths returns every tracked path, sorted. Nil when no tracker
// was configured.
func (r *Resolved) ProvenancePaths() []string {
	if r.tracker == nil {
		return nil
	}
	return r.tracker.Paths()
}

// Resolve loads name, recursively resolves its FROM chain, migrates every
// document to the current schema, folds the chain base-to-derived through
// the merge engine, and validates the result.
func (r *Resolver) Resolve(name string) (*Resolved, error) {
	tree, chain, err := r.fold(name, nil)
	if err != nil {
		return nil, err
	}
	if err := r.validator.Validate(tree); err != nil {
		return nil, err
	}
	r.logger.Debug("resolved configuration", "name", name, "chain", chain)
	return &Resolved{Name: name, Tree: tree, Chain: chain, tracker: r.tracker}, nil
}

// fold resolves one document and everything below it. trail holds the
// document names along the current resolution path, derived-first, for
// cycle detection and reporting.
func (r *Resolver) fold(name string, trail []string) (*node.Node, []string, error) {
	for i, seen := range trail {
		if seen == name {
			return nil, nil, &pipeconf.CycleError{Chain: trail[i:]}
		}
	}
	if len(trail) >= r.maxDepth {
		return nil, nil, fmt.Errorf("%s: %w", name, pipeconf.ErrChainTooDeep)
	}

	doc, err := r.loader.Load(name)
	if err != nil {
		if len(trail) > 0 && errors.Is(err, pipeconf.ErrNotFound) {
			// A miss below the top of the chain is a dangling FROM.
			return nil, nil, fmt.Errorf("%s: FROM %q: %w", trail[len(trail)-1], name, pipeconf.ErrUnknownBase)
		}
		return nil, nil, err
	}

	migrated, err := r.migrator.Migrate(name, doc.Tree, doc.SchemaVersion)
	if err != nil {
		return nil, nil, err
	}

	if doc.Base == "" {
		if r.tracker != nil {
			r.tracker.RecordTree(name, migrated)
		}
		return migrated, []string{name}, nil
	}

	r.logger.Debug("resolving base", "document", name, "base", doc.Base)
	baseTree, baseChain, err := r.fold(doc.Base, append(trail, name))
	if err != nil {
		return nil, nil, err
	}

	if r.tracker != nil {
		r.tracker.SetDocument(name)
	}
	merged := r.engine.Merge(baseTree, migrated)
	return merged, append(baseChain, name), nil
}
