// Package normalize canonicalizes extracted values before they are compared
// and persisted.
package normalize

import "strings"

// Value trims leading and trailing whitespace and collapses every run of
// whitespace inside s into a single ASCII space. Value is idempotent.
func Value(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
