package domain

import "time"

type ArticleStatus string

const (
	ArticlePending ArticleStatus = "pending"
	ArticleIndexed ArticleStatus = "indexed"
	ArticleFailed  ArticleStatus = "failed"
)

// Article is an ingested text (blog post or cleaned video transcript) waiting
// to be chunked and indexed, plus its bookkeeping state.
type Article struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	Author     string        `json:"author"`
	SourceType string        `json:"source_type"`
	Text       string        `json:"-"`
	CharCount  int           `json:"char_count"`
	ChunkCount int           `json:"chunk_count"`
	Status     ArticleStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type ArticleStats struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}
