// utils/identifier.go
package utils

import (
	"regexp"
	"strings"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9]{4}-[A-Za-z0-9]{4}$`)

// IsValidIdentifier reports whether s looks like a Socrata dataset id
// ("xxxx-xxxx", alphanumeric).
func IsValidIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// NormalizeIdentifier strips surrounding whitespace. Case is preserved since
// Socrata ids are case sensitive.
func NormalizeIdentifier(s string) string {
	return strings.TrimSpace(s)
}
