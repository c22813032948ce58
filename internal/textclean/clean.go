// Package textclean normalises text pulled out of document XML.
package textclean

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean converts s to NFC, collapses every run of whitespace to a single
// space and trims both ends.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Truncate returns at most n runes of s, appending "..." when it cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
