// Package identifier canonicalizes the identifiers users log in with.
package identifier

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email returns the case-folded form used for uniqueness and lookup.
func Email(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}

// Username returns the NFKC form of an account username. Case is preserved
// because usernames match case-sensitively.
func Username(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

