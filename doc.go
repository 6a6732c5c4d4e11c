// Package pipeconf resolves layered pipeline configuration documents.
//
// A configuration document is a YAML mapping that may declare FROM, naming
// a base document it derives from. Resolution loads the document, follows
// the FROM chain to its root, migrates every document to the current schema
// version, deep-merges each derived document over its base, and validates
// the final tree.
//
// The module is organized into subpackages by stage:
//
//   - node: the mapping/sequence/scalar configuration tree model
//   - registry: built-in preset catalog and filesystem document sources
//   - loader: named document loading and reserved-key extraction
//   - migrate: ordered schema-version migration steps
//   - merge: the recursive deep-merge engine with keyed-list support
//   - resolve: FROM-chain folding, cycle detection, and orchestration
//   - validate: full-pass schema validation
//   - testutil: test fixtures and fake document sources
//
// # Quick Start
//
//	reg := registry.Builtin()
//	r := resolve.New(resolve.Options{Loader: loader.New(reg)})
//	resolved, err := r.Resolve("RBC-options")
//
// This package itself holds only the error taxonomy shared by the stages.
package pipeconf
