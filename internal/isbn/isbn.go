// Package isbn checks the lexical shape of book identifiers.
package isbn

import "regexp"

// 10 characters (nine digits and a digit or X check character), or the same
// body behind a 978/979 prefix for the 13-character form.
var shape = regexp.MustCompile(`^(97(8|9))?\d{9}(\d|X)$`)

// IsValid reports whether s looks like an ISBN-10 or ISBN-13.
// The check digit is not verified and s is not trimmed.
func IsValid(s string) bool {
	return shape.MatchString(s)
}
