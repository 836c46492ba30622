package content

import (
	"context"
	"fmt"
	"os"
)

// Source produces the raw FAQ entries for a Store.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Entry, error)
}

// FileSource reads a JSON array (or CSV when the path ends in .csv).
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Fetch(_ context.Context) ([]Entry, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := decodeEntries(f, formatFor(s.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return entries, nil
}

// StaticSource serves a fixed slice; used by tests and the CLI.
type StaticSource []Entry

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) Fetch(_ context.Context) ([]Entry, error) {
	out := make([]Entry, len(s))
	for i, e := range s {
		out[i] = e.clone()
	}
	return out, nil
}
