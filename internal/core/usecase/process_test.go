package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

type chunkerFake struct {
	parts []string
}

func (f *chunkerFake) Split(string) []string { return f.parts }

type indexingVectorStore struct {
	fakeVectorStore
	added  []domain.Chunk
	addErr error
}

func (f *indexingVectorStore) AddChunks(_ context.Context, chunks []domain.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, chunks...)
	return nil
}

func pendingArticle() *domain.Article {
	return &domain.Article{
		ID:         "a1",
		Title:      "Mavi Kart Rehberi",
		URL:        "https://oktayozdemir.com.tr/blog/mavi-kart",
		Author:     "Oktay Özdemir",
		SourceType: "blog",
		Text:       "uzun makale metni",
		Status:     domain.ArticlePending,
		CreatedAt:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestProcessIndexesChunksWithMetadata(t *testing.T) {
	repo := newArticleRepoFake()
	repo.byID = pendingArticle()
	vs := &indexingVectorStore{}
	uc := NewProcessArticleUseCase(repo, &chunkerFake{parts: []string{"parça bir iki", "parça üç"}}, vs)

	if err := uc.Process(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs.added) != 2 {
		t.Fatalf("expected 2 indexed chunks, got %d", len(vs.added))
	}
	meta := vs.added[0].Metadata
	if meta.Title != "Mavi Kart Rehberi" || meta.URL != "https://oktayozdemir.com.tr/blog/mavi-kart" {
		t.Fatalf("unexpected chunk metadata %+v", meta)
	}
	if meta.Date != "2025-03-10" {
		t.Fatalf("expected creation date, got %q", meta.Date)
	}
	if meta.WordCount != 3 {
		t.Fatalf("expected word count 3, got %d", meta.WordCount)
	}
	if repo.indexed["a1"] != 2 {
		t.Fatalf("expected chunk count recorded, got %v", repo.indexed)
	}
}

func TestProcessMarksFailedOnEmptyChunking(t *testing.T) {
	repo := newArticleRepoFake()
	repo.byID = pendingArticle()
	uc := NewProcessArticleUseCase(repo, &chunkerFake{}, &indexingVectorStore{})

	err := uc.Process(context.Background(), "a1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if msg := repo.failed["a1"]; !strings.Contains(msg, "zero chunks") {
		t.Fatalf("expected failure recorded, got %q", msg)
	}
}

func TestProcessMarksFailedOnIndexError(t *testing.T) {
	repo := newArticleRepoFake()
	repo.byID = pendingArticle()
	vs := &indexingVectorStore{addErr: errors.New("qdrant unavailable")}
	uc := NewProcessArticleUseCase(repo, &chunkerFake{parts: []string{"parça"}}, vs)

	err := uc.Process(context.Background(), "a1")
	if err == nil {
		t.Fatalf("expected index error")
	}
	if _, ok := repo.failed["a1"]; !ok {
		t.Fatalf("expected failure recorded")
	}
}

func TestProcessFetchErrorPropagates(t *testing.T) {
	repo := newArticleRepoFake()
	repo.getErr = domain.ErrArticleNotFound
	uc := NewProcessArticleUseCase(repo, &chunkerFake{parts: []string{"x"}}, &indexingVectorStore{})

	err := uc.Process(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrArticleNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("fetch failure must not mark article failed")
	}
}
