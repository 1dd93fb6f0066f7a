package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

// ProcessArticleUseCase is the worker-side half of ingestion: load the
// pending article, split it, index the chunks, record the outcome.
type ProcessArticleUseCase struct {
	repo    ports.ArticleRepository
	chunker ports.Chunker
	vector  ports.VectorStore
}

var _ ports.ArticleProcessor = (*ProcessArticleUseCase)(nil)

func NewProcessArticleUseCase(
	repo ports.ArticleRepository,
	chunker ports.Chunker,
	vector ports.VectorStore,
) *ProcessArticleUseCase {
	return &ProcessArticleUseCase{
		repo:    repo,
		chunker: chunker,
		vector:  vector,
	}
}

func (uc *ProcessArticleUseCase) Process(ctx context.Context, articleID string) error {
	article, err := uc.repo.GetByID(ctx, articleID)
	if err != nil {
		return fmt.Errorf("fetch article by id: %w", err)
	}

	chunks, err := uc.buildChunks(article)
	if err != nil {
		return uc.fail(ctx, articleID, err)
	}

	if err := uc.vector.AddChunks(ctx, chunks); err != nil {
		return uc.fail(ctx, articleID, fmt.Errorf("index chunks: %w", err))
	}

	if err := uc.repo.MarkIndexed(ctx, articleID, len(chunks)); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	return nil
}

func (uc *ProcessArticleUseCase) buildChunks(article *domain.Article) ([]domain.Chunk, error) {
	parts := uc.chunker.Split(article.Text)
	if len(parts) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk article", errors.New("chunking produced zero chunks"))
	}

	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			Text: part,
			Metadata: domain.ChunkMetadata{
				Title:      article.Title,
				URL:        article.URL,
				Author:     article.Author,
				Date:       article.CreatedAt.Format("2006-01-02"),
				SourceType: article.SourceType,
				WordCount:  len(strings.Fields(part)),
			},
		}
	}
	return chunks, nil
}

func (uc *ProcessArticleUseCase) fail(ctx context.Context, articleID string, processErr error) error {
	if markErr := uc.repo.MarkFailed(ctx, articleID, processErr.Error()); markErr != nil {
		return fmt.Errorf("%w; mark failed status: %v", processErr, markErr)
	}
	return processErr
}
