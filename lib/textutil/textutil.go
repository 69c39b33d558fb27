package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// invisible code points that show up arbitrarily inside dish names
// and categories on the source pages
var invisibleReplacer = strings.NewReplacer(
	"\u00a0", " ", // non-breaking space
	"\u00ad", "", // soft hyphen
	"\u200b", "", // zero width space
	"\ufeff", "", // byte order mark
	"\u200e", "", // left-to-right mark
	"\u200f", "", // right-to-left mark
)

// Normalize strips invisible/control characters, collapses whitespace
// runs to a single space and trims the result. It is idempotent and
// must be applied to every string pulled out of a menu document.
func Normalize(s string) string {
	s = invisibleReplacer.Replace(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CanonicalKey lowercases and trims a field for use in content hashing.
func CanonicalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
