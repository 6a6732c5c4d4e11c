package pipeconf

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution errors.
var (
	// ErrNotFound indicates the named configuration document does not exist.
	ErrNotFound = errors.New("configuration document not found")

	// ErrUnknownBase indicates a FROM reference does not resolve to a document.
	ErrUnknownBase = errors.New("unknown base configuration")

	// ErrChainTooDeep indicates the FROM chain exceeds the configured maximum depth.
	ErrChainTooDeep = errors.New("inheritance chain too deep")
)

// ParseError indicates a document could not be parsed.
type ParseError struct {
	Name   string // Document name as requested
	Line   int    // 1-based line of the failure, 0 if unknown
	Column int    // 1-based column of the failure, 0 if unknown
	Err    error  // Underlying parser error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Name, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CycleError indicates the FROM chain loops back on itself.
type CycleError struct {
	// Chain lists the document names along the loop in resolution order,
	// starting at the first document that is eventually revisited.
	Chain []string
}

func (e *CycleError) Error() string {
	return "inheritance cycle: " + strings.Join(e.Chain, " -> ")
}

// NoMigrationPathError indicates a document's schema version has no
// migration route to the current version.
type NoMigrationPathError struct {
	Name    string // Document name, may be empty when migrating a bare tree
	From    string // Declared schema version
	Current string // Current schema version
}

func (e *NoMigrationPathError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no migration path for %s: %s -> %s", e.Name, e.From, e.Current)
	}
	return fmt.Sprintf("no migration path: %s -> %s", e.From, e.Current)
}

// Violation is a single schema violation found during validation.
type Violation struct {
	Path   string // Dot-joined tree path of the offending value
	Reason string // Human-readable description of the problem
}

func (v Violation) String() string {
	return v.Path + ": " + v.Reason
}

// ValidationError carries every violation found in one validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "configuration invalid: 1 violation"
	}
	return fmt.Sprintf("configuration invalid: %d violations", len(e.Violations))
}
