package slug

import (
	"strings"

	gosimpleslug "github.com/gosimple/slug"
)

// Lang is the transliteration language used for non-ASCII input.
const Lang = "tr"

// Generate creates a URL-friendly slug from the given name. Non-ASCII
// letters are transliterated (Turkish rules first, then unidecode) and every
// run of other characters becomes a single hyphen.
//
// Examples:
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Feature Phone" → "feature-phone"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	return gosimpleslug.MakeLang(strings.TrimSpace(name), Lang)
}

// IsValid reports whether s is already in canonical slug form.
func IsValid(s string) bool {
	return gosimpleslug.IsSlug(s)
}
