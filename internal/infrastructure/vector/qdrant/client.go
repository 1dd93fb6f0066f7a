package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const scrollPageSize = 256

// Store is the qdrant-backed vector index. Query text is embedded through the
// injected embedder; all HTTP calls go through qdrant's REST API.
type Store struct {
	baseURL    string
	collection string
	embedder   ports.Embedder
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

var _ ports.VectorStore = (*Store)(nil)

func New(baseURL, collection string, embedder ports.Embedder) *Store {
	return &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	hits, err := s.search(ctx, query, k, false)
	if err != nil {
		return nil, err
	}
	return chunksOf(hits), nil
}

func (s *Store) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]domain.Chunk, []float64, error) {
	hits, err := s.search(ctx, query, k, false)
	if err != nil {
		return nil, nil, err
	}
	scores := make([]float64, len(hits))
	for i, h := range hits {
		scores[i] = h.score
	}
	return chunksOf(hits), scores, nil
}

// MaxMarginalRelevanceSearch fetches fetchK scored candidates with their
// vectors and reduces them to k diversity-aware picks client-side.
func (s *Store) MaxMarginalRelevanceSearch(ctx context.Context, query string, k, fetchK int, lambda float64) ([]domain.Chunk, error) {
	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.searchByVector(ctx, queryVector, fetchK, true)
	if err != nil {
		return nil, err
	}

	picked := maximalMarginalRelevance(queryVector, hits, k, lambda)
	return chunksOf(picked), nil
}

// AllChunks pages through the collection with the scroll API. Used once per
// process to seed the lexical index.
func (s *Store) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	var (
		out    []domain.Chunk
		offset any
	)
	for {
		reqBody := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
		}
		if offset != nil {
			reqBody["offset"] = offset
		}

		var scrollResp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.post(ctx, "/points/scroll", reqBody, &scrollResp); err != nil {
			return nil, fmt.Errorf("qdrant scroll: %w", err)
		}

		for _, p := range scrollResp.Result.Points {
			out = append(out, chunkFromPayload(p.Payload))
		}
		if scrollResp.Result.NextPageOffset == nil {
			return out, nil
		}
		offset = scrollResp.Result.NextPageOffset
	}
}

func (s *Store) AddChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks))
	}

	if err := s.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}
	points := make([]point, 0, len(chunks))
	for i, c := range chunks {
		points = append(points, point{
			ID:      uuid.NewString(),
			Vector:  vectors[i],
			Payload: payloadFromChunk(c),
		})
	}

	body, err := json.Marshal(map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("marshal upsert body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant upsert request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant upsert status: %s", resp.Status)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.post(ctx, "/points/count", map[string]any{"exact": true}, &countResp); err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return countResp.Result.Count, nil
}

type scoredHit struct {
	chunk  domain.Chunk
	score  float64
	vector []float32
}

func (s *Store) search(ctx context.Context, query string, k int, withVectors bool) ([]scoredHit, error) {
	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.searchByVector(ctx, queryVector, k, withVectors)
}

func (s *Store) searchByVector(ctx context.Context, queryVector []float32, k int, withVectors bool) ([]scoredHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        k,
		"with_payload": true,
	}
	if withVectors {
		reqBody["with_vector"] = true
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
			Vector  []float32      `json:"vector"`
		} `json:"result"`
	}
	if err := s.post(ctx, "/points/search", reqBody, &searchResp); err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	out := make([]scoredHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, scoredHit{
			chunk:  chunkFromPayload(r.Payload),
			score:  r.Score,
			vector: r.Vector,
		})
	}
	return out, nil
}

func (s *Store) post(ctx context.Context, pointsPath string, reqBody any, decoded any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s%s", s.baseURL, s.collection, pointsPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("status %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(decoded)
}

func (s *Store) ensureCollection(ctx context.Context, vectorSize int) error {
	s.ensureMu.Lock()
	if s.ensuredCollection && s.ensuredVectorSize == vectorSize {
		s.ensureMu.Unlock()
		return nil
	}
	s.ensureMu.Unlock()

	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if already exists (depends on version/config).
	if resp.StatusCode == http.StatusConflict {
		s.markCollectionEnsured(vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	s.markCollectionEnsured(vectorSize)
	return nil
}

func (s *Store) markCollectionEnsured(vectorSize int) {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	s.ensuredCollection = true
	s.ensuredVectorSize = vectorSize
}

func payloadFromChunk(c domain.Chunk) map[string]any {
	return map[string]any{
		"text":        c.Text,
		"title":       c.Metadata.Title,
		"url":         c.Metadata.URL,
		"author":      c.Metadata.Author,
		"date":        c.Metadata.Date,
		"source_type": c.Metadata.SourceType,
		"word_count":  c.Metadata.WordCount,
		"video_id":    c.Metadata.VideoID,
		"duration":    c.Metadata.Duration,
	}
}

func chunkFromPayload(payload map[string]any) domain.Chunk {
	return domain.Chunk{
		Text: getStringPayload(payload, "text"),
		Metadata: domain.ChunkMetadata{
			Title:      getStringPayload(payload, "title"),
			URL:        getStringPayload(payload, "url"),
			Author:     getStringPayload(payload, "author"),
			Date:       getStringPayload(payload, "date"),
			SourceType: getStringPayload(payload, "source_type"),
			WordCount:  getIntPayload(payload, "word_count"),
			VideoID:    getStringPayload(payload, "video_id"),
			Duration:   getFloatPayload(payload, "duration"),
		},
	}
}

func chunksOf(hits []scoredHit) []domain.Chunk {
	out := make([]domain.Chunk, len(hits))
	for i, h := range hits {
		out[i] = h.chunk
	}
	return out
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getFloatPayload(payload map[string]any, key string) float64 {
	if v, ok := payload[key].(float64); ok {
		return v
	}
	return 0
}
