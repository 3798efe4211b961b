package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dgml")
	if err := os.WriteFile(path, []byte("<DirectedGraph/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFile(path)
	if src.Name() != "graph.dgml" {
		t.Errorf("Name() = %q", src.Name())
	}

	data, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if string(data) != "<DirectedGraph/>" {
		t.Errorf("Load() = %q", data)
	}

	// Rereads pick up changes
	if err := os.WriteFile(path, []byte("<DirectedGraph Title='x'/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, _ = src.Load(context.Background())
	if !strings.Contains(string(data), "Title") {
		t.Errorf("second Load() = %q, want updated content", data)
	}
}

func TestFileLoadErrors(t *testing.T) {
	src := NewFile(filepath.Join(t.TempDir(), "missing.dgml"))
	if _, err := src.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() of missing file = %v, want ErrNotExist", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() with cancelled context = %v", err)
	}
}

func TestReaderLoadsOnce(t *testing.T) {
	src := NewReader("stdin", strings.NewReader("<DirectedGraph/>"))
	for i := 0; i < 2; i++ {
		data, err := src.Load(context.Background())
		if err != nil {
			t.Fatalf("Load() #%d error: %v", i, err)
		}
		if string(data) != "<DirectedGraph/>" {
			t.Errorf("Load() #%d = %q", i, data)
		}
		data[0] = 'X'
	}
}

func TestOpen(t *testing.T) {
	if _, ok := Open("-").(*Reader); !ok {
		t.Error(`Open("-") should read stdin`)
	}
	f, ok := Open("a/b.dgml").(*File)
	if !ok || f.Path() != "a/b.dgml" {
		t.Errorf(`Open("a/b.dgml") = %#v`, Open("a/b.dgml"))
	}
}
