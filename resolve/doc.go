// Package resolve walks a configuration document's FROM chain, detects
// cycles and runaway depth, and folds the chain into a single validated
// tree via the migrate and merge stages.
package resolve
