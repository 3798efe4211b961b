package watcher

import (
	"context"
	"time"

	"github.com/ritzau/dgml-visualizer/pkg/logging"
)

// Debouncer folds bursts of change events into one, so a save that touches the file
// several times triggers a single reload.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. An event is emitted once the input has
// been quiet for quietPeriod, or maxWait after the first event of a burst.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 4),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending *ChangeEvent
		quiet   <-chan time.Time
		limit   <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing document changes", "type", pending.Type.String(), "events", pending.Count)
		select {
		case d.output <- *pending:
		case <-ctx.Done():
		}
		pending, quiet, limit = nil, nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			if pending == nil {
				first := ev
				pending = &first
				limit = time.After(d.maxWait)
			} else {
				// The latest state of the file decides the type
				pending.Type = ev.Type
				pending.Timestamp = ev.Timestamp
				pending.Count += ev.Count
			}
			quiet = time.After(d.quietPeriod)

		case <-quiet:
			flush()

		case <-limit:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
