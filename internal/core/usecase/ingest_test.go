package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

type articleRepoFake struct {
	created   *domain.Article
	createErr error

	byID     *domain.Article
	getErr   error
	indexed  map[string]int
	failed   map[string]string
	indexErr error
	markErr  error
}

func newArticleRepoFake() *articleRepoFake {
	return &articleRepoFake{
		indexed: make(map[string]int),
		failed:  make(map[string]string),
	}
}

func (f *articleRepoFake) Create(_ context.Context, article *domain.Article) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *article
	f.created = &copied
	return nil
}

func (f *articleRepoFake) GetByID(context.Context, string) (*domain.Article, error) {
	return f.byID, f.getErr
}

func (f *articleRepoFake) MarkIndexed(_ context.Context, id string, chunkCount int) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed[id] = chunkCount
	return nil
}

func (f *articleRepoFake) MarkFailed(_ context.Context, id, errMessage string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.failed[id] = errMessage
	return nil
}

func (f *articleRepoFake) Stats(context.Context) (domain.ArticleStats, error) {
	return domain.ArticleStats{}, nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishArticleIngested(_ context.Context, articleID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, articleID)
	return nil
}

func (f *queueFake) SubscribeArticleIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type normalizerFake struct{ calls int }

func (f *normalizerFake) Normalize(text string) string {
	f.calls++
	return "temiz: " + text
}

type archiveFake struct {
	saved map[string]string
	err   error
}

func (f *archiveFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, _ := io.ReadAll(data)
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[key] = string(raw)
	return nil
}

func TestIngestTranscriptSuccess(t *testing.T) {
	repo := newArticleRepoFake()
	queue := &queueFake{}
	uc := NewIngestTranscriptUseCase(repo, queue, nil, nil)

	meta := domain.ChunkMetadata{Title: "Video Başlığı", URL: "https://v", Author: "Yazar", SourceType: "video"}
	article, err := uc.IngestTranscript(context.Background(), "transkript metni", meta, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article.ID == "" || article.Status != domain.ArticlePending {
		t.Fatalf("unexpected article %+v", article)
	}
	if repo.created == nil || repo.created.Title != "Video Başlığı" {
		t.Fatalf("expected persisted article, got %+v", repo.created)
	}
	if len(queue.published) != 1 || queue.published[0] != article.ID {
		t.Fatalf("expected published id, got %v", queue.published)
	}
}

func TestIngestTranscriptAppliesDefaults(t *testing.T) {
	repo := newArticleRepoFake()
	uc := NewIngestTranscriptUseCase(repo, &queueFake{}, nil, nil)

	article, err := uc.IngestTranscript(context.Background(), "metin", domain.ChunkMetadata{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if article.Title != "Başlıksız" || article.Author != "Oktay Özdemir" || article.SourceType != "video" {
		t.Fatalf("expected metadata defaults, got %+v", article)
	}
}

func TestIngestTranscriptCleansWhenRequested(t *testing.T) {
	repo := newArticleRepoFake()
	norm := &normalizerFake{}
	uc := NewIngestTranscriptUseCase(repo, &queueFake{}, norm, nil)

	article, err := uc.IngestTranscript(context.Background(), "ham metin", domain.ChunkMetadata{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if norm.calls != 1 || article.Text != "temiz: ham metin" {
		t.Fatalf("expected normalized text, got %q (%d calls)", article.Text, norm.calls)
	}

	if _, err := uc.IngestTranscript(context.Background(), "ham metin", domain.ChunkMetadata{}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if norm.calls != 1 {
		t.Fatalf("clean=false must skip normalization, got %d calls", norm.calls)
	}
}

func TestIngestTranscriptRejectsEmptyText(t *testing.T) {
	uc := NewIngestTranscriptUseCase(newArticleRepoFake(), &queueFake{}, nil, nil)

	_, err := uc.IngestTranscript(context.Background(), "   \n", domain.ChunkMetadata{}, false)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestIngestTranscriptArchivesRawAndCleanCopies(t *testing.T) {
	archive := &archiveFake{}
	uc := NewIngestTranscriptUseCase(newArticleRepoFake(), &queueFake{}, &normalizerFake{}, archive)

	article, err := uc.IngestTranscript(context.Background(), "ham metin", domain.ChunkMetadata{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := archive.saved[article.ID+"_raw.txt"]; got != "ham metin" {
		t.Fatalf("expected raw copy, got %q", got)
	}
	if got := archive.saved[article.ID+"_clean.txt"]; got != "temiz: ham metin" {
		t.Fatalf("expected clean copy, got %q", got)
	}
}

func TestIngestTranscriptArchiveFailureIsNotFatal(t *testing.T) {
	archive := &archiveFake{err: errors.New("disk full")}
	queue := &queueFake{}
	uc := NewIngestTranscriptUseCase(newArticleRepoFake(), queue, nil, archive)

	article, err := uc.IngestTranscript(context.Background(), "metin", domain.ChunkMetadata{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.published) != 1 || !strings.Contains(queue.published[0], article.ID) {
		t.Fatalf("expected publish despite archive failure, got %v", queue.published)
	}
}

func TestIngestTranscriptPublishFailure(t *testing.T) {
	uc := NewIngestTranscriptUseCase(newArticleRepoFake(), &queueFake{err: errors.New("nats down")}, nil, nil)

	_, err := uc.IngestTranscript(context.Background(), "metin", domain.ChunkMetadata{}, false)
	if err == nil {
		t.Fatalf("expected publish error")
	}
}
