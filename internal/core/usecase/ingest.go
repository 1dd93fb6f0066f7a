package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

// IngestTranscriptUseCase registers cleaned text for asynchronous indexing:
// persist bookkeeping, hand the id to the queue, let the worker do the heavy
// lifting.
type IngestTranscriptUseCase struct {
	repo       ports.ArticleRepository
	queue      ports.MessageQueue
	normalizer TextNormalizer
	archive    ports.ObjectStorage
}

var _ ports.TranscriptIngestor = (*IngestTranscriptUseCase)(nil)

func NewIngestTranscriptUseCase(
	repo ports.ArticleRepository,
	queue ports.MessageQueue,
	normalizer TextNormalizer,
	archive ports.ObjectStorage,
) *IngestTranscriptUseCase {
	return &IngestTranscriptUseCase{
		repo:       repo,
		queue:      queue,
		normalizer: normalizer,
		archive:    archive,
	}
}

func (uc *IngestTranscriptUseCase) IngestTranscript(
	ctx context.Context,
	text string,
	meta domain.ChunkMetadata,
	clean bool,
) (*domain.Article, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest transcript", errors.New("empty text"))
	}

	raw := text
	if clean && uc.normalizer != nil {
		text = uc.normalizer.Normalize(text)
	}

	now := time.Now().UTC()
	article := &domain.Article{
		ID:         uuid.NewString(),
		Title:      titleOrDefault(meta.Title),
		URL:        meta.URL,
		Author:     authorOrDefault(meta.Author),
		SourceType: sourceTypeOrDefault(meta.SourceType),
		Text:       text,
		CharCount:  len([]rune(text)),
		Status:     domain.ArticlePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.repo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article record: %w", err)
	}

	// The on-disk copies are an audit trail; the indexed text lives in the
	// article record. Archiving failures do not block ingestion.
	uc.archiveCopy(ctx, article.ID+"_raw.txt", raw)
	uc.archiveCopy(ctx, article.ID+"_clean.txt", text)

	if err := uc.queue.PublishArticleIngested(ctx, article.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return article, nil
}

func (uc *IngestTranscriptUseCase) archiveCopy(ctx context.Context, key, text string) {
	if uc.archive == nil {
		return
	}
	if err := uc.archive.Save(ctx, key, strings.NewReader(text)); err != nil {
		slog.Warn("archive transcript copy", "key", key, "error", err)
	}
}

func titleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return defaultTitle
	}
	return title
}

func authorOrDefault(author string) string {
	if strings.TrimSpace(author) == "" {
		return defaultAuthor
	}
	return author
}

func sourceTypeOrDefault(sourceType string) string {
	if strings.TrimSpace(sourceType) == "" {
		return "video"
	}
	return sourceType
}
