package api

import "context"

// Source supplies the raw bytes of a DGML document. Implementations decide where the
// document lives: a file on disk, standard input, or a live debugging session.
type Source interface {
	// Name identifies the document in logs and events.
	Name() string

	// Load returns the current document text. It should respect the context for cancellation.
	Load(ctx context.Context) ([]byte, error)
}
