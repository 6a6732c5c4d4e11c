// Package loader reads named configuration documents into trees, pulling
// out the reserved FROM and schema_version keys along the way.
package loader
