// Package slug maps display names to the file-safe ids used for image paths.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block, U+0300 to U+036F.
var combiningMarks = &unicode.RangeTable{ //nolint:gochecknoglobals // read-only table
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalize lowercases s, decomposes it (NFD), strips combining marks, collapses
// every run of characters outside [a-z0-9] into one '_' and trims '_' from both
// ends. It is total and idempotent; "" maps to "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pending := false
	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteByte(c)
			continue
		}
		pending = true
	}
	return b.String()
}
