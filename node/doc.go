// Package node defines the configuration tree model: a tagged union over
// mappings, sequences, and scalars, with order-preserving mappings and
// lossless YAML round-tripping.
package node
