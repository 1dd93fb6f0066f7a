package ports

import (
	"context"
	"io"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

// VectorStore is the persisted similarity index over chunks. Queries are plain
// text; embedding happens behind the adapter.
type VectorStore interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error)
	SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]domain.Chunk, []float64, error)
	MaxMarginalRelevanceSearch(ctx context.Context, query string, k, fetchK int, lambda float64) ([]domain.Chunk, error)
	AllChunks(ctx context.Context) ([]domain.Chunk, error)
	AddChunks(ctx context.Context, chunks []domain.Chunk) error
	Count(ctx context.Context) (int, error)
}

// LexicalIndex is the in-memory term-frequency side of hybrid retrieval.
type LexicalIndex interface {
	Add(chunks []domain.Chunk) error
	Search(query string, k int) ([]domain.Chunk, error)
	Len() int
}

// CrossEncoder scores (query, passage) relevance pairs.
type CrossEncoder interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
	// Warm issues a dummy scoring call to absorb first-use latency.
	Warm(ctx context.Context) error
}

// CompletionClient is the black-box generation model.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
	Model() string
	Configured() bool
}

// Embedder builds vectors for chunk and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// SessionMemory holds the bounded per-session conversation history.
type SessionMemory interface {
	History(sessionID string) []domain.Turn
	Append(sessionID string, turns ...domain.Turn)
}

// ArticleRepository persists ingestion bookkeeping.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	MarkIndexed(ctx context.Context, id string, chunkCount int) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
	Stats(ctx context.Context) (domain.ArticleStats, error)
}

// ObjectStorage archives raw and cleaned transcript copies.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
}

// MessageQueue publishes/consumes article ingestion events.
type MessageQueue interface {
	PublishArticleIngested(ctx context.Context, articleID string) error
	SubscribeArticleIngested(ctx context.Context, handler func(context.Context, string) error) error
}
