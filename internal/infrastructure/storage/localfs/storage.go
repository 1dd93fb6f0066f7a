package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

// Storage keeps transcript copies as flat files under basePath.
type Storage struct {
	basePath string
}

var _ ports.ObjectStorage = (*Storage)(nil)

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/transcripts"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Save(_ context.Context, key string, data io.Reader) error {
	path := filepath.Join(s.basePath, key)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
