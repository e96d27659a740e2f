package rag

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/search"
)

const (
	summaryHeader  = "CONTEÚDO DE REFERÊNCIA (usa este material do currículo para guiar o aluno, sem dar a resposta directamente):"
	defaultTopK    = 3
	defaultBudget  = 2000
	candidateBoost = 3
)

// Retriever produces the optional knowledge context for a question. A nil
// Retriever or one without a Searcher never retrieves.
type Retriever struct {
	Searcher Searcher
	TopK     int
	MinScore float64
	// MaxRunes bounds the summary length.
	MaxRunes int
}

// Retrieve returns the knowledge context for query, and false when there
// is none: the gate declined, the search failed, or nothing scored at
// least MinScore. It never returns an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, mode domain.Mode) (domain.KnowledgeContext, bool) {
	if r == nil || r.Searcher == nil || !ShouldRetrieve(query, mode) {
		return domain.KnowledgeContext{}, false
	}

	ctx, span := otel.Tracer("rag/Retriever").Start(ctx, "Retrieve",
		trace.WithAttributes(attribute.String("mode", string(mode))),
	)
	defer span.End()

	k := r.TopK
	if k <= 0 {
		k = defaultTopK
	}

	results, err := r.Searcher.Search(ctx, query, k*candidateBoost)
	if err == nil && len(results) == 0 {
		if simple := simplifyQuery(query); simple != "" && simple != search.Fold(query) {
			results, err = r.Searcher.Search(ctx, simple, k*candidateBoost)
		}
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("mode", string(mode)).Msg("knowledge retrieval failed")
		span.RecordError(err)
		return domain.KnowledgeContext{}, false
	}

	snippets := lo.Uniq(lo.FilterMap(results, func(res search.Result, _ int) (string, bool) {
		if res.Score < r.MinScore {
			return "", false
		}
		clean := collapseWhitespaceLines(res.Snippet)
		if res.Heading != "" && clean != "" {
			clean = res.Heading + ": " + clean
		}
		return clean, clean != ""
	}))
	if len(snippets) == 0 {
		span.SetAttributes(attribute.Int("rag.hits", 0))
		return domain.KnowledgeContext{}, false
	}
	if len(snippets) > k {
		snippets = snippets[:k]
	}
	span.SetAttributes(attribute.Int("rag.hits", len(snippets)))

	return domain.KnowledgeContext{
		HasRelevantContent: true,
		Summary:            r.summarize(snippets),
	}, true
}

func (r *Retriever) summarize(snippets []string) string {
	budget := r.MaxRunes
	if budget <= 0 {
		budget = defaultBudget
	}
	var b strings.Builder
	b.WriteString(summaryHeader)
	used := 0
	for _, s := range snippets {
		n := utf8.RuneCountInString(s)
		if used > 0 && used+n > budget {
			break
		}
		if n > budget {
			s = string([]rune(s)[:budget])
			n = budget
		}
		b.WriteString("\n- ")
		b.WriteString(s)
		used += n
	}
	return b.String()
}

var queryStop = lo.SliceToMap(append(search.PortugueseStopwords,
	"explica", "explicar", "ajuda", "ajudar", "percebo", "nao", "sei", "diz", "segundo", "acordo", "livro", "manual", "exame",
), func(w string) (string, struct{}) { return w, struct{}{} })

// simplifyQuery keeps the content words of a question, dropping function
// words and the retrieval keywords themselves.
func simplifyQuery(s string) string {
	words := strings.FieldsFunc(search.Fold(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	keep := lo.Filter(words, func(w string, _ int) bool {
		_, stop := queryStop[w]
		return !stop
	})
	return strings.Join(keep, " ")
}

// collapseWhitespaceLines trims each line, collapses inner whitespace and
// drops empty lines.
func collapseWhitespaceLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lo.FilterMap(lines, func(ln string, _ int) (string, bool) {
		f := strings.Fields(ln)
		return strings.Join(f, " "), len(f) > 0
	})
	return strings.Join(out, "\n")
}
