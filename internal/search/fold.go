package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics, so "Exame", "exâme" and "EXAME"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// PortugueseStopwords are function words ignored when matching questions
// against the knowledge base. Entries are already folded.
var PortugueseStopwords = []string{
	"a", "ao", "aos", "as", "com", "como", "da", "das", "de", "do", "dos",
	"e", "ela", "ele", "em", "entre", "esta", "este", "eu", "ha", "isso",
	"isto", "mais", "mas", "me", "meu", "minha", "na", "nas", "no", "nos",
	"o", "os", "ou", "para", "pela", "pelo", "por", "porque", "qual",
	"quais", "quando", "que", "sao", "se", "sem", "ser", "seu", "sua", "te",
	"tem", "tu", "um", "uma", "voce",
}
