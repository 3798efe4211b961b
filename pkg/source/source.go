// Package source provides the document sources the visualizer can load from.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ritzau/dgml-visualizer/pkg/analysis/api"
	"github.com/ritzau/dgml-visualizer/pkg/logging"
)

// maxDocumentSize bounds how much a source will read.
const maxDocumentSize = 64 << 20

// File reads a DGML document from disk on every Load.
type File struct {
	path string
}

// NewFile creates a source for the document at path.
func NewFile(path string) api.Source {
	return &File{path: path}
}

func (s *File) Name() string {
	return filepath.Base(s.path)
}

// Path returns the file location, used to watch for changes.
func (s *File) Path() string {
	return s.path
}

func (s *File) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	logging.New("source.file").Debug("document loaded", "path", s.path, "bytes", len(data))
	return data, nil
}

// Reader drains r on first Load and serves the same bytes afterwards. It is used for
// standard input, which cannot be reread.
type Reader struct {
	name string
	r    io.Reader

	once sync.Once
	data []byte
	err  error
}

// NewReader creates a source over r.
func NewReader(name string, r io.Reader) api.Source {
	return &Reader{name: name, r: r}
}

func (s *Reader) Name() string {
	return s.name
}

func (s *Reader) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.once.Do(func() {
		s.data, s.err = readLimited(s.r)
	})
	if s.err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.name, s.err)
	}
	return bytes.Clone(s.data), nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentSize)
	}
	return data, nil
}

// Open picks a source for a command-line argument. "-" reads standard input.
func Open(arg string) api.Source {
	if arg == "-" {
		return NewReader("stdin", os.Stdin)
	}
	return NewFile(arg)
}
