package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcherSeesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.dgml")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(path, []byte("<DirectedGraph/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(path)
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(other, []byte("noise"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<DirectedGraph Title='x'/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-fw.Events():
		if ev.Path != fw.Path() {
			t.Errorf("event for %s, want %s", ev.Path, fw.Path())
		}
		if ev.Type != ChangeModified {
			t.Errorf("Type = %v, want modified", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for the watched document")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-fw.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}

func TestNewFileWatcherErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileWatcher(filepath.Join(dir, "missing.dgml")); err == nil {
		t.Error("watching a missing file should fail")
	}
	if _, err := NewFileWatcher(dir); err == nil {
		t.Error("watching a directory should fail")
	}
}

func TestDebouncerFoldsBursts(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 30*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		in <- ChangeEvent{Type: ChangeModified, Path: "g.dgml", Count: 1}
	}

	select {
	case ev := <-d.Output():
		if ev.Count != 5 || ev.Type != ChangeModified {
			t.Errorf("debounced event = %+v, want 5 folded modifications", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no debounced event")
	}

	select {
	case ev := <-d.Output():
		t.Errorf("unexpected second event %+v", ev)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 50*time.Millisecond, 120*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// Keep the input busy for longer than maxWait
	stop := time.After(400 * time.Millisecond)
	got := make(chan ChangeEvent, 1)
	go func() {
		got <- <-d.Output()
	}()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev := <-got:
			if ev.Count < 2 {
				t.Errorf("Count = %d, want several folded events", ev.Count)
			}
			return
		case <-ticker.C:
			in <- ChangeEvent{Type: ChangeModified, Count: 1}
		case <-stop:
			t.Fatal("maxWait did not force a flush")
		}
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeRemoved, Count: 1}
	close(in)

	ev, ok := <-d.Output()
	if !ok || ev.Type != ChangeRemoved {
		t.Errorf("got %+v, %v; want the pending removal", ev, ok)
	}
	if _, ok := <-d.Output(); ok {
		t.Error("output not closed after input closed")
	}
}

func TestAnalyzeChanges(t *testing.T) {
	mod := AnalyzeChanges(ChangeEvent{Type: ChangeModified, Path: "/x/rete.dgml"})
	if !mod.NeedReload || mod.Reason != "rete.dgml changed" {
		t.Errorf("modified = %+v", mod)
	}
	rm := AnalyzeChanges(ChangeEvent{Type: ChangeRemoved, Path: "/x/rete.dgml"})
	if rm.NeedReload || rm.Reason != "rete.dgml removed" {
		t.Errorf("removed = %+v", rm)
	}
}
