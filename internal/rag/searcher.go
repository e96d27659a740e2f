package rag

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/samber/lo"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/tbourn/go-tutor-backend/internal/search"
)

// Searcher looks up knowledge-base passages for a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]search.Result, error)
}

// IndexSearcher serves queries from the in-memory Markdown index. Without
// an index it finds nothing.
type IndexSearcher struct {
	Index search.Index
}

func (s IndexSearcher) Search(_ context.Context, query string, k int) ([]search.Result, error) {
	if s.Index == nil {
		return nil, nil
	}
	return s.Index.TopK(query, k), nil
}

// vectorQuerier is the part of *pinecone.IndexConnection used here.
type vectorQuerier interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
}

// PineconeSearcher embeds the query with OpenAI embeddings and runs a
// nearest-neighbour search in a Pinecone index. Each vector is expected to
// carry "content" metadata and optionally "heading".
type PineconeSearcher struct {
	embedder embeddings.Embedder
	index    vectorQuerier
}

// PineconeOptions configures NewPineconeSearcher.
type PineconeOptions struct {
	APIKey         string
	Index          string
	Namespace      string
	OpenAIKey      string
	EmbeddingModel string
}

// NewPineconeSearcher resolves the index host once and prepares the
// embedder.
func NewPineconeSearcher(ctx context.Context, opt PineconeOptions) (*PineconeSearcher, error) {
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: opt.APIKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone client: %w", err)
	}
	desc, err := pc.DescribeIndex(ctx, opt.Index)
	if err != nil {
		return nil, fmt.Errorf("describe index %q: %w", opt.Index, err)
	}
	conn, err := pc.Index(pinecone.NewIndexConnParams{Host: desc.Host, Namespace: opt.Namespace})
	if err != nil {
		return nil, fmt.Errorf("index connection: %w", err)
	}

	llm, err := openai.New(
		openai.WithToken(opt.OpenAIKey),
		openai.WithEmbeddingModel(opt.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return &PineconeSearcher{embedder: emb, index: conn}, nil
}

func (s *PineconeSearcher) Search(ctx context.Context, query string, k int) ([]search.Result, error) {
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	res, err := s.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vec,
		TopK:            uint32(k),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	hits := lo.FilterMap(res.Matches, func(m *pinecone.ScoredVector, _ int) (search.Result, bool) {
		if m == nil || m.Vector == nil || m.Vector.Metadata == nil {
			return search.Result{}, false
		}
		meta := m.Vector.Metadata.AsMap()
		content, _ := meta["content"].(string)
		if content == "" {
			return search.Result{}, false
		}
		heading, _ := meta["heading"].(string)
		return search.Result{Snippet: content, Heading: heading, Score: float64(m.Score)}, true
	})
	return hits, nil
}
