package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/dgml-visualizer/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeModified ChangeType = iota
	ChangeRemoved
)

func (c ChangeType) String() string {
	if c == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// ChangeEvent reports that the watched document changed. Count is how many raw
// file system events were folded into it.
type ChangeEvent struct {
	Type      ChangeType
	Path      string
	Count     int
	Timestamp time.Time
}

// FileWatcher watches a single document. The parent directory is watched so that
// editors that save by renaming a temporary file are still seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for the document at path.
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", path, err)
	} else if info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: is a directory", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: w,
		path:    abs,
		events:  make(chan ChangeEvent, 16),
	}, nil
}

// Start begins watching. Events stop and the channel closes when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching document", "path", fw.path)

	go fw.processEvents(ctx)
	return nil
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			change, relevant := fw.classify(ev)
			if !relevant {
				continue
			}
			logging.Trace("document event", "op", ev.Op.String(), "path", ev.Name)
			select {
			case fw.events <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) classify(ev fsnotify.Event) (ChangeEvent, bool) {
	if filepath.Clean(ev.Name) != fw.path {
		return ChangeEvent{}, false
	}

	change := ChangeEvent{Path: fw.path, Count: 1, Timestamp: time.Now()}
	switch {
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		change.Type = ChangeModified
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		change.Type = ChangeRemoved
	default:
		return ChangeEvent{}, false
	}
	return change, true
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}
