package qdrant

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
)

type stubEmbedder struct {
	queryVector []float32
	vectors     [][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.vectors != nil {
		return s.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if s.queryVector != nil {
		return s.queryVector, nil
	}
	return []float32{1, 0}, nil
}

func TestSimilaritySearchWithScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chunks/points/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["limit"].(float64) != 5 {
			t.Fatalf("expected limit 5, got %v", body["limit"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{"score": 0.92, "payload": map[string]any{"text": "parça", "title": "Yazı", "url": "https://u", "word_count": float64(3)}},
			},
		})
	}))
	defer srv.Close()

	store := New(srv.URL, "chunks", &stubEmbedder{})
	chunks, scores, err := store.SimilaritySearchWithScore(context.Background(), "soru", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "parça" || chunks[0].Metadata.Title != "Yazı" {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
	if chunks[0].Metadata.WordCount != 3 {
		t.Fatalf("expected word count decoded, got %d", chunks[0].Metadata.WordCount)
	}
	if len(scores) != 1 || scores[0] != 0.92 {
		t.Fatalf("unexpected scores %v", scores)
	}
}

func TestAllChunksPaginatesScroll(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chunks/points/scroll" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		page++
		if page == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"points":           []map[string]any{{"payload": map[string]any{"text": "bir"}}},
					"next_page_offset": "cursor-2",
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"points":           []map[string]any{{"payload": map[string]any{"text": "iki"}}},
				"next_page_offset": nil,
			},
		})
	}))
	defer srv.Close()

	store := New(srv.URL, "chunks", &stubEmbedder{})
	chunks, err := store.AllChunks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 || chunks[0].Text != "bir" || chunks[1].Text != "iki" {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
	if page != 2 {
		t.Fatalf("expected two scroll pages, got %d", page)
	}
}

func TestAddChunksEnsuresCollectionAndUpserts(t *testing.T) {
	var ensured, upserted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/chunks":
			ensured = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/chunks/points":
			upserted = true
			var body struct {
				Points []struct {
					ID      string         `json:"id"`
					Vector  []float32      `json:"vector"`
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode upsert: %v", err)
			}
			if len(body.Points) != 1 || body.Points[0].Payload["title"] != "Yazı" {
				t.Fatalf("unexpected upsert body %+v", body)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	store := New(srv.URL, "chunks", &stubEmbedder{})
	err := store.AddChunks(context.Background(), []domain.Chunk{
		{Text: "parça", Metadata: domain.ChunkMetadata{Title: "Yazı"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ensured || !upserted {
		t.Fatalf("expected ensure+upsert, got ensured=%v upserted=%v", ensured, upserted)
	}
}

func TestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/chunks/points/count" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 42}})
	}))
	defer srv.Close()

	store := New(srv.URL, "chunks", &stubEmbedder{})
	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := New(srv.URL, "chunks", &stubEmbedder{})
	if _, err := store.SimilaritySearch(context.Background(), "soru", 3); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestMaximalMarginalRelevancePrefersDiversity(t *testing.T) {
	query := []float32{1, 0}
	hits := []scoredHit{
		{chunk: domain.Chunk{Text: "a"}, vector: []float32{1, 0}},
		{chunk: domain.Chunk{Text: "a-copy"}, vector: []float32{0.999, 0.01}},
		{chunk: domain.Chunk{Text: "b"}, vector: []float32{0.6, 0.8}},
	}

	picked := maximalMarginalRelevance(query, hits, 2, 0.3)
	if len(picked) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(picked))
	}
	if picked[0].chunk.Text != "a" {
		t.Fatalf("expected most relevant first, got %q", picked[0].chunk.Text)
	}
	// The near-duplicate must lose to the diverse vector at lambda 0.3.
	if picked[1].chunk.Text != "b" {
		t.Fatalf("expected diverse pick second, got %q", picked[1].chunk.Text)
	}
}

func TestMaximalMarginalRelevanceSmallInput(t *testing.T) {
	hits := []scoredHit{{chunk: domain.Chunk{Text: "tek"}, vector: []float32{1, 0}}}
	picked := maximalMarginalRelevance([]float32{1, 0}, hits, 5, 0.3)
	if len(picked) != 1 {
		t.Fatalf("expected passthrough for k >= len, got %d", len(picked))
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{2, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("parallel vectors: expected 1, got %f", got)
	}
	if got := cosineSimilarity(nil, []float32{1}); got != 0 {
		t.Fatalf("mismatched lengths: expected 0, got %f", got)
	}
}
