// Package variant encodes variant selections into compact, searchable string
// tokens and decodes them back.
package variant

import (
	"regexp"
	"strings"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	separatorRuns   = regexp.MustCompile(`[-_]+`)
)

// CleanString canonicalises s for embedding in an encoded token: lowercase,
// only [a-z0-9-_] kept, runs of '-' and '_' collapsed into a single '-', and
// surrounding '-' trimmed.
func CleanString(s string) string {
	s = strings.ToLower(s)
	s = disallowedChars.ReplaceAllString(s, "")
	s = separatorRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
