package dedupe

import (
	"strings"
	"unicode"
)

// NormalizeAlias canonicalizes a name or alias for comparison: lowercase,
// all whitespace removed, including full-width space and BOM/zero-width
// invisibles. Total on any input and idempotent. Stored aliases keep their
// original casing; this key is for matching only.
func NormalizeAlias(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) || isInvisible(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isInvisible(r rune) bool {
	switch r {
	case '\uFEFF', // BOM / zero-width no-break space
		'\u200B', // zero-width space
		'\u200C', // zero-width non-joiner
		'\u200D': // zero-width joiner
		return true
	}
	return false
}
