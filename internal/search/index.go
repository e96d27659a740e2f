// Package search implements the local knowledge base: an immutable
// in-memory index over Markdown paragraphs, safe for concurrent use.
//
// Paragraphs remember the heading they appear under, and the heading words
// count as paragraph words, so a short fact under "## Frações" still
// matches a question about fractions. Tokens are accent-folded, so
// "equação" and "equacao" are the same word. Scoring is Jaccard similarity
// between query and paragraph token sets: |Q ∩ P| / |Q ∪ P|.
package search

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Result is a ranked snippet with its similarity score.
type Result struct {
	Snippet string
	Heading string
	Score   float64
}

// Index is implemented by every local index.
type Index interface {
	TopK(query string, k int) []Result
	Len() int
}

type Option func(*config)

type config struct {
	minParagraphRunes int
	stopwords         map[string]struct{}
	maxDocs           int
}

func defaultConfig() config {
	return config{minParagraphRunes: 20}
}

// WithMinParagraphRunes drops paragraphs shorter than n runes.
func WithMinParagraphRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minParagraphRunes = n
		}
	}
}

// WithStopwords ignores the given words in both queries and paragraphs.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			if w = Fold(strings.TrimSpace(w)); w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps the number of indexed paragraphs.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

type doc struct {
	heading string
	text    string
	tokens  map[string]struct{}
}

type index struct {
	cfg  config
	docs []doc
}

// Section is a paragraph together with the heading it appears under.
type Section struct {
	Heading string
	Text    string
}

// NewIndexFromMarkdown reads the Markdown file at path, flattens its tables
// and indexes the result.
func NewIndexFromMarkdown(path string, opts ...Option) (Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return &index{cfg: defaultConfig()}, err
	}
	return NewIndexFromReader(bytes.NewReader(b), opts...)
}

// NewIndexFromReader indexes the Markdown read from r.
func NewIndexFromReader(r io.Reader, opts ...Option) (Index, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	flat, err := FlattenTables(r)
	if err != nil {
		return &index{cfg: cfg}, err
	}
	return buildIndex(SplitSections(string(flat)), cfg), nil
}

// NewIndexFromSections indexes pre-split sections.
func NewIndexFromSections(sections []Section, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return buildIndex(sections, cfg)
}

func buildIndex(sections []Section, cfg config) *index {
	docs := make([]doc, 0, len(sections))
	for _, s := range sections {
		text := collapseSpaces(s.Text)
		if text == "" {
			continue
		}
		if cfg.minParagraphRunes > 0 && utf8.RuneCountInString(text) < cfg.minParagraphRunes {
			continue
		}
		toks := tokenize(s.Heading+" "+text, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{heading: s.Heading, text: text, tokens: toks})
		if cfg.maxDocs > 0 && len(docs) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

func (i *index) Len() int { return len(i.docs) }

// TopK returns up to k best-matching paragraphs. Ties go to the shorter
// paragraph, then to lexical order, so results are deterministic.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qt := tokenize(q, i.cfg.stopwords)
	if len(qt) == 0 {
		return nil
	}

	type scored struct {
		Result
		runes int
	}
	var hits []scored
	for _, d := range i.docs {
		over := overlap(qt, d.tokens)
		if over == 0 {
			continue
		}
		union := len(qt) + len(d.tokens) - over
		hits = append(hits, scored{
			Result: Result{Snippet: d.text, Heading: d.heading, Score: float64(over) / float64(union)},
			runes:  utf8.RuneCountInString(d.text),
		})
	}
	if len(hits) == 0 {
		return nil
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		if hits[a].runes != hits[b].runes {
			return hits[a].runes < hits[b].runes
		}
		return hits[a].Snippet < hits[b].Snippet
	})

	k = min(k, len(hits))
	out := make([]Result, k)
	for n := range out {
		out[n] = hits[n].Result
	}
	return out
}

var (
	wordRE      = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)
	paraSplitRE = regexp.MustCompile(`\n\s*\n`)
	headingRE   = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(Fold(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitSections splits Markdown into blank-line separated paragraphs and
// tags each with the closest preceding heading. Heading lines themselves
// are not emitted as paragraphs.
func SplitSections(md string) []Section {
	var (
		out     []Section
		heading string
	)
	for _, chunk := range paraSplitRE.Split(md, -1) {
		var body []string
		for _, line := range strings.Split(strings.TrimSpace(chunk), "\n") {
			if m := headingRE.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				if len(body) > 0 {
					out = append(out, Section{Heading: heading, Text: strings.Join(body, "\n")})
					body = nil
				}
				heading = m[1]
				continue
			}
			body = append(body, line)
		}
		if text := strings.TrimSpace(strings.Join(body, "\n")); text != "" {
			out = append(out, Section{Heading: heading, Text: text})
		}
	}
	return out
}
