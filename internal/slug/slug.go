// Package slug turns display text into ASCII identifiers safe for file names and object keys.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make lowercases s, strips diacritics and collapses every run of other characters into a single
// underscore. It returns fallback when nothing usable is left.
func Make(s, fallback string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder

	pendingSep := false

	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}

			b.WriteRune(r)

			pendingSep = false

			continue
		}

		pendingSep = true
	}

	if b.Len() == 0 {
		return fallback
	}

	return b.String()
}
