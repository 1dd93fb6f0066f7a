package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const (
	tokenOverlapBonus  = 0.06
	numberMatchBonus   = 0.20
	urlPresenceBonus   = 0.10
	domainKeywordBonus = 0.15

	rerankTopNormal = 4
	rerankTopDetail = 6
)

// wordTokenPattern extracts Unicode word tokens, Turkish letters included.
var wordTokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// domainKeywords are literals whose presence in a passage is a strong
// relevance signal for this corpus: legal codes, salary thresholds, named
// permits. Matched against lowercased text.
var domainKeywords = []string{
	"48.300", "43.759,80", "bottleneck", "nitelikli iş gücü açığı",
	"hızlandırılmış", "81a", "ikamet yasası", "ön onay",
	"14 gün", "wohnungsgeberbestätigung", "anmeldung",
	"niederlassungserlaubnis", "b1", "36 ay", "emeklilik sigortası",
	"§20a", "puan", "mesleki yeterlilik", "kalıcı ikamet", "a2",
	"sosyal güvenlik", "çalışma izni", "53.130", "brüt", "45 yaş",
}

// Reranker orders fused candidates by cross-encoder relevance plus rule-based
// bonuses. The encoder is warmed once per process; a scoring failure degrades
// to the incoming fused order.
type Reranker struct {
	encoder  ports.CrossEncoder
	warmOnce sync.Once
}

func NewReranker(encoder ports.CrossEncoder) *Reranker {
	return &Reranker{encoder: encoder}
}

// Rerank returns the top min(N, len(candidates)) chunks, where N is 6 in
// detail mode and 4 otherwise.
func (r *Reranker) Rerank(ctx context.Context, candidates []domain.Chunk, question, expandedQuery string, detailMode bool) []domain.Chunk {
	if len(candidates) == 0 {
		return nil
	}
	topN := rerankTopNormal
	if detailMode {
		topN = rerankTopDetail
	}
	if topN > len(candidates) {
		topN = len(candidates)
	}

	r.warmOnce.Do(func() {
		if err := r.encoder.Warm(ctx); err != nil {
			slog.Warn("cross_encoder_warmup_failed", "error", err)
		}
	})

	passages := make([]string, len(candidates))
	for i, c := range candidates {
		passages[i] = c.Text
	}

	scores, err := r.encoder.Score(ctx, expandedQuery, passages)
	if err != nil || len(scores) != len(candidates) {
		slog.Warn("cross_encoder_unavailable", "error", err)
		return candidates[:topN]
	}

	scored := make([]domain.ScoredCandidate, len(candidates))
	for i, chunk := range candidates {
		scored[i] = domain.ScoredCandidate{
			Chunk:       chunk,
			RerankScore: scores[i] + relevanceBonus(question, chunk),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RerankScore > scored[j].RerankScore
	})

	out := make([]domain.Chunk, topN)
	for i := 0; i < topN; i++ {
		out[i] = scored[i].Chunk
	}
	return out
}

// relevanceBonus accumulates the rule-based score adjustments for one chunk.
// All terms are additive.
func relevanceBonus(question string, chunk domain.Chunk) float64 {
	text := strings.ToLower(chunk.Text)
	bonus := 0.0

	seen := make(map[string]struct{})
	for _, token := range wordTokenPattern.FindAllString(question, -1) {
		token = strings.ToLower(token)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		if strings.Contains(text, token) {
			bonus += tokenOverlapBonus
		}
	}

	// Numbers carry the most weight: match raw or with the decimal comma
	// normalized to a point.
	for _, num := range numberPattern.FindAllString(question, -1) {
		normalized := strings.ReplaceAll(num, ",", ".")
		if strings.Contains(text, normalized) || strings.Contains(text, num) {
			bonus += numberMatchBonus
		}
	}

	if strings.TrimSpace(chunk.Metadata.URL) != "" {
		bonus += urlPresenceBonus
	}

	for _, keyword := range domainKeywords {
		if strings.Contains(text, keyword) {
			bonus += domainKeywordBonus
		}
	}

	return bonus
}
