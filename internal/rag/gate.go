// Package rag decides when a tutoring question should be grounded in the
// curriculum knowledge base and builds the context attached to the prompt.
// Retrieval is best-effort: a failure or an empty result simply means the
// tutor answers without reference material.
package rag

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/search"
)

// keywords signal that the student refers to official material. Entries
// are folded (lower case, no accents).
var keywords = []string{
	"manual",
	"manuais",
	"livro",
	"exame",
	"programa",
	"segundo o livro",
	"de acordo com o livro",
	"textbook",
	"exam",
	"according to the book",
}

// minFuzzyRunes is the shortest single-word keyword matched with one typo.
const minFuzzyRunes = 5

// ShouldRetrieve reports whether query warrants a knowledge-base lookup.
// Exam preparation always retrieves. Other modes retrieve only when the
// folded query contains one of the keywords ("programação" contains
// "programa"); single-word keywords also match a word with one typo
// ("exsame").
func ShouldRetrieve(query string, mode domain.Mode) bool {
	if mode == domain.ModeExamPrep {
		return true
	}
	q := search.Fold(query)
	if strings.TrimSpace(q) == "" {
		return false
	}
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
		if strings.Contains(kw, " ") || utf8.RuneCountInString(kw) < minFuzzyRunes {
			continue
		}
		for _, w := range words {
			if fuzzy.LevenshteinDistance(w, kw) <= 1 {
				return true
			}
		}
	}
	return false
}
