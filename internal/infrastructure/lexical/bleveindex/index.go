package bleveindex

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

// indexedDoc is what bleve analyzes per chunk.
type indexedDoc struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Index is the in-memory BM25 side of hybrid retrieval. Built once at
// bootstrap time, read-only afterwards.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	meta  map[string]domain.Chunk
}

var _ ports.LexicalIndex = (*Index)(nil)

func New() (*Index, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Index{
		index: index,
		meta:  make(map[string]domain.Chunk),
	}, nil
}

func (i *Index) Add(chunks []domain.Chunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for _, chunk := range chunks {
		id := strconv.Itoa(len(i.meta))
		i.meta[id] = chunk
		if err := batch.Index(id, indexedDoc{Text: chunk.Text, Title: chunk.Metadata.Title}); err != nil {
			return fmt.Errorf("batch chunk: %w", err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}
	return nil
}

// Search runs a free-text match query and returns the top k chunks by BM25
// score. A match query (not query-string syntax) keeps punctuation-heavy
// Turkish questions from tripping the query parser.
func (i *Index) Search(query string, k int) ([]domain.Chunk, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	out := make([]domain.Chunk, 0, len(res.Hits))
	for _, hit := range res.Hits {
		chunk, ok := i.meta[hit.ID]
		if !ok {
			continue
		}
		out = append(out, chunk)
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.meta)
}
