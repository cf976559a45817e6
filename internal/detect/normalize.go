// Package detect implements the offer-detection core: source classification,
// field extraction, candidate selection, dedup/debounce gating and
// acceptance tracking, orchestrated by Pipeline.
package detect

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer strips combining marks after NFD decomposition, folding
// accented Portuguese text ("distância", "até") to plain ASCII letters.
var normalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text, folds diacritics and collapses runs of
// whitespace to single spaces. All vocabulary matching and pattern
// extraction run over normalized text; byte offsets reported by the
// extractor are offsets into the normalized form.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(normalizer, s)
	if err != nil {
		// Transform failures are rare (invalid UTF-8); fall back to the
		// raw text rather than losing the snapshot.
		folded = s
	}
	return collapseSpaces(strings.ToLower(folded))
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
