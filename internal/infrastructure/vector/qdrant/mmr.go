package qdrant

import "math"

// maximalMarginalRelevance greedily picks k hits balancing query relevance
// against redundancy with already-picked hits. lambda weights relevance;
// 1-lambda weights diversity.
func maximalMarginalRelevance(queryVector []float32, hits []scoredHit, k int, lambda float64) []scoredHit {
	if k >= len(hits) {
		return hits
	}
	if k <= 0 {
		return nil
	}

	querySims := make([]float64, len(hits))
	for i, h := range hits {
		querySims[i] = cosineSimilarity(queryVector, h.vector)
	}

	picked := make([]scoredHit, 0, k)
	pickedIdx := make([]int, 0, k)
	used := make([]bool, len(hits))

	for len(picked) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i := range hits {
			if used[i] {
				continue
			}
			redundancy := 0.0
			for _, j := range pickedIdx {
				if sim := cosineSimilarity(hits[i].vector, hits[j].vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*querySims[i] - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		used[bestIdx] = true
		pickedIdx = append(pickedIdx, bestIdx)
		picked = append(picked, hits[bestIdx])
	}
	return picked
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
