package ports

import (
	"context"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

// ChatService answers user questions over the indexed corpus. Ask never
// returns an error: every failure class degrades to a response the caller can
// render.
type ChatService interface {
	Ask(ctx context.Context, question, sessionID string) domain.ChatResponse
}

// TranscriptIngestor registers cleaned transcript text for indexing.
type TranscriptIngestor interface {
	IngestTranscript(ctx context.Context, text string, meta domain.ChunkMetadata, clean bool) (*domain.Article, error)
}

// ArticleProcessor chunks, embeds and indexes a registered article.
type ArticleProcessor interface {
	Process(ctx context.Context, articleID string) error
}
