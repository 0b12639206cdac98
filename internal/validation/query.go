package validation

import (
	"strings"
	"unicode"
)

// MaxQueryLength bounds the search text sent to the service.
const MaxQueryLength = 256

// SanitizeQuery collapses whitespace, drops control characters and caps
// the length at MaxQueryLength runes.
func SanitizeQuery(q string) string {
	var b strings.Builder
	space := false
	n := 0
	for _, r := range q {
		if n >= MaxQueryLength {
			break
		}
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space {
			b.WriteByte(' ')
			n++
			space = false
			if n >= MaxQueryLength {
				break
			}
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
