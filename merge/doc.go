// Package merge deep-merges an override configuration tree into a base
// tree: mappings merge key-wise preserving base order, sequences are
// replaced unless a keyed-list policy matches their path, scalars are
// overridden outright, and kind mismatches resolve in the override's
// favor. An optional tracker records per-path provenance chains.
package merge
