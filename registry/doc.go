// Package registry resolves configuration document names to loadable
// sources: the embedded preset catalog, filesystem paths, and injected
// test documents.
package registry
