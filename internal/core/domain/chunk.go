package domain

// ChunkMetadata carries the blog/video provenance attached to every indexed
// chunk at ingestion time.
type ChunkMetadata struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Author     string  `json:"author"`
	Date       string  `json:"date"`
	SourceType string  `json:"source_type"`
	WordCount  int     `json:"word_count,omitempty"`
	VideoID    string  `json:"video_id,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
}

// Chunk is the unit of retrieval: a bounded span of source text plus metadata.
// Immutable once persisted into the vector store.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ScoredCandidate is pipeline-local state for one chunk during a single query.
// VectorRank and LexicalRank are rank-normalized to [0,1].
type ScoredCandidate struct {
	Chunk       Chunk
	VectorRank  float64
	LexicalRank float64
	FusedScore  float64
	RerankScore float64
}
