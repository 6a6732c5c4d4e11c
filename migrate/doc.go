// Package migrate rewrites configuration trees written against older
// schema versions into the current shape, one versioned step at a time.
package migrate
