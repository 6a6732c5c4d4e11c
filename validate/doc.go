// Package validate checks a fully resolved configuration tree against an
// explicit schema, reporting every violation found in a single pass.
package validate
