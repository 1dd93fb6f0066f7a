package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const (
	// Fusion weights are hand-tuned constants, not derived. Vector ranks
	// carry more weight than lexical ranks.
	vectorFusionWeight  = 0.6
	lexicalFusionWeight = 0.4

	mmrLambda     = 0.3
	candidatesCap = 20

	maxCategoryKeywords = 10
)

// HybridRetriever fuses diversity-aware vector search with lexical search
// over the same corpus. The lexical index is built lazily from the chunks
// materialized out of the vector store; a failed build is retried on the
// next request.
type HybridRetriever struct {
	vector  ports.VectorStore
	lexical ports.LexicalIndex
	baseK   int

	lexMu    sync.Mutex
	lexBuilt bool
}

func NewHybridRetriever(vector ports.VectorStore, lexical ports.LexicalIndex, baseChunkCount int) *HybridRetriever {
	if baseChunkCount <= 0 {
		baseChunkCount = 10
	}
	return &HybridRetriever{
		vector:  vector,
		lexical: lexical,
		baseK:   baseChunkCount,
	}
}

// Retrieve returns up to 20 fused candidates for the expanded query. Retrieval
// failures degrade internally; the result may be empty but never an error.
func (r *HybridRetriever) Retrieve(ctx context.Context, expandedQuery string, detailMode bool, categoryHint string) []domain.Chunk {
	query := expandedQuery
	if categoryHint != "" {
		if keywords := CategoryKeywords(categoryHint); len(keywords) > 0 {
			if len(keywords) > maxCategoryKeywords {
				keywords = keywords[:maxCategoryKeywords]
			}
			query += "\n" + strings.Join(keywords, " ")
		}
	}

	var mmrK, fetchK int
	if detailMode {
		mmrK = maxInt(20, r.baseK)
		fetchK = maxInt(60, mmrK*3)
	} else {
		mmrK = maxInt(12, r.baseK)
		fetchK = maxInt(30, mmrK*2)
	}

	vecChunks, err := r.vector.MaxMarginalRelevanceSearch(ctx, query, mmrK, fetchK, mmrLambda)
	if err != nil {
		slog.Warn("mmr_search_failed", "error", err)
		vecChunks, _, err = r.vector.SimilaritySearchWithScore(ctx, query, mmrK)
		if err != nil {
			slog.Warn("vector_search_failed", "error", err)
			return r.fallbackRetrieve(ctx, query)
		}
	}

	lexChunks := r.lexicalSearch(ctx, query, maxInt(10, mmrK))

	fused := fuseByRank(vecChunks, lexChunks)
	limit := minInt(candidatesCap, maxInt(12, mmrK))
	if len(fused) > limit {
		fused = fused[:limit]
	}

	out := make([]domain.Chunk, 0, len(fused))
	for _, cand := range fused {
		out = append(out, cand.Chunk)
	}
	return out
}

// fuseByRank assigns each list a per-item rank score (N-i)/N, combines the
// two sides per unique chunk text and sorts by the weighted sum. A chunk
// present in only one list scores zero on the missing side, so every fused
// score stays within [0,1].
func fuseByRank(vector, lexical []domain.Chunk) []domain.ScoredCandidate {
	acc := make(map[string]*domain.ScoredCandidate, len(vector)+len(lexical))
	order := make([]string, 0, len(vector)+len(lexical))

	record := func(chunk domain.Chunk) *domain.ScoredCandidate {
		key := chunk.Text
		cand, ok := acc[key]
		if !ok {
			cand = &domain.ScoredCandidate{Chunk: chunk}
			acc[key] = cand
			order = append(order, key)
		}
		return cand
	}

	for i, chunk := range vector {
		record(chunk).VectorRank = float64(len(vector)-i) / float64(len(vector))
	}
	for i, chunk := range lexical {
		record(chunk).LexicalRank = float64(len(lexical)-i) / float64(len(lexical))
	}

	out := make([]domain.ScoredCandidate, 0, len(order))
	for _, key := range order {
		cand := acc[key]
		cand.FusedScore = vectorFusionWeight*cand.VectorRank + lexicalFusionWeight*cand.LexicalRank
		out = append(out, *cand)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FusedScore > out[j].FusedScore
	})
	return out
}

// lexicalSearch bootstraps the lexical index on first use and queries it.
// Any failure degrades to an empty result for the current request.
func (r *HybridRetriever) lexicalSearch(ctx context.Context, query string, k int) []domain.Chunk {
	if !r.ensureLexicalIndex(ctx) {
		return nil
	}
	hits, err := r.lexical.Search(query, k)
	if err != nil {
		slog.Warn("lexical_search_failed", "error", err)
		return nil
	}
	return hits
}

// ensureLexicalIndex builds the index from the vector store corpus. The mutex
// makes the build single-flight; concurrent requests wait for the winner
// instead of racing duplicate scroll passes. A failed attempt leaves the
// index unbuilt so a later request tries again.
func (r *HybridRetriever) ensureLexicalIndex(ctx context.Context) bool {
	r.lexMu.Lock()
	defer r.lexMu.Unlock()
	if r.lexBuilt {
		return true
	}

	chunks, err := r.vector.AllChunks(ctx)
	if err != nil || len(chunks) == 0 {
		slog.Warn("lexical_bootstrap_enumeration_failed", "error", err)
		// Settle for a wide generic sample when enumeration is unavailable.
		chunks, err = r.vector.SimilaritySearch(ctx, "test", 200)
		if err != nil {
			slog.Warn("lexical_bootstrap_failed", "error", err)
			return false
		}
	}
	if err := r.lexical.Add(chunks); err != nil {
		slog.Warn("lexical_index_build_failed", "error", err)
		return false
	}
	r.lexBuilt = true
	slog.Info("lexical_index_ready", "chunks", len(chunks))
	return true
}

// fallbackRetrieve is the simplified path used when both MMR and scored
// similarity search fail: a plain similarity pass merged with a lexical
// rescue, deduplicated by exact text, capped at the base chunk count.
func (r *HybridRetriever) fallbackRetrieve(ctx context.Context, query string) []domain.Chunk {
	semantic, err := r.vector.SimilaritySearch(ctx, query, r.baseK)
	if err != nil {
		slog.Error("fallback_retrieval_failed", "error", err)
		semantic = nil
	}
	lexical := r.lexicalSearch(ctx, query, r.baseK)

	seen := make(map[string]struct{}, len(semantic)+len(lexical))
	out := make([]domain.Chunk, 0, r.baseK)
	for _, chunk := range append(semantic, lexical...) {
		if _, ok := seen[chunk.Text]; ok {
			continue
		}
		seen[chunk.Text] = struct{}{}
		out = append(out, chunk)
		if len(out) == r.baseK {
			break
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
