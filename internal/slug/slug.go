// Package slug builds the URL part of composition addresses.
package slug

import (
	"regexp"
	"strings"
)

// nonWord matches every run of characters that are not letters, marks,
// digits or underscores.
var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)

// Words lowercases s and collapses each non-word run into a single hyphen.
// Leading and trailing runs are kept as hyphens: "Hi, there!" → "hi-there-".
func Words(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(s), "-")
}
