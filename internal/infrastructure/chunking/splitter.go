package chunking

import (
	"strings"

	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const (
	// Sized for Turkish legal prose: small enough for the cross-encoder,
	// enough overlap to keep cited figures with their sentences.
	DefaultChunkSize = 450
	DefaultOverlap   = 120
)

type Splitter struct {
	ChunkSize int
	Overlap   int
}

var _ ports.Chunker = (*Splitter)(nil)

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
