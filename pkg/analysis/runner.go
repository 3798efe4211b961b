package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/dgml-visualizer/pkg/analysis/api"
	"github.com/ritzau/dgml-visualizer/pkg/dgml"
	"github.com/ritzau/dgml-visualizer/pkg/graph"
	"github.com/ritzau/dgml-visualizer/pkg/logging"
	"github.com/ritzau/dgml-visualizer/pkg/model"
	"github.com/ritzau/dgml-visualizer/pkg/pubsub"
	"github.com/ritzau/dgml-visualizer/pkg/style"
	"github.com/ritzau/dgml-visualizer/pkg/watcher"
)

const totalSteps = 3

// Snapshot is the outcome of one run. When Err is set only the identifying fields
// are meaningful.
type Snapshot struct {
	ID         string          `json:"id"`
	Document   string          `json:"document"`
	Reason     string          `json:"reason"`
	Title      string          `json:"title"`
	LoadedAt   time.Time       `json:"loadedAt"`
	Graph      *dgml.Graph     `json:"-"`
	Result     *style.Result   `json:"styles,omitempty"`
	Elements   []model.Element `json:"elements,omitempty"`
	Stats      graph.Stats     `json:"stats"`
	Roots      []string        `json:"roots,omitempty"`
	Cycles     [][]string      `json:"cycles,omitempty"`
	Dangling   []dgml.Link     `json:"danglingLinks,omitempty"`
	Duplicates []string        `json:"duplicateLinks,omitempty"`
	Err        error           `json:"-"`
	Error      string          `json:"error,omitempty"`
}

// Options configures a Runner.
type Options struct {
	// Strict validates every rule expression before resolving, so all authoring
	// defects are reported together.
	Strict bool
}

// Runner loads, parses and styles a document. Runs are serialised.
type Runner struct {
	source    api.Source
	parser    *dgml.Parser
	resolver  *style.Resolver
	publisher pubsub.Publisher
	opts      Options

	mu      sync.Mutex // Prevent concurrent runs
	snapMu  sync.RWMutex
	current *Snapshot
}

// NewRunner creates a runner. publisher may be nil.
func NewRunner(src api.Source, publisher pubsub.Publisher, opts Options) *Runner {
	return &Runner{
		source:    src,
		parser:    dgml.NewParser(),
		resolver:  style.NewResolver(),
		publisher: publisher,
		opts:      opts,
	}
}

// Current returns the latest snapshot, or nil before the first run.
func (r *Runner) Current() *Snapshot {
	r.snapMu.RLock()
	defer r.snapMu.RUnlock()
	return r.current
}

// Run produces a new snapshot and makes it current, even when it failed: a failed
// document replaces the previous rendering with its error. The returned error is the
// snapshot's Err.
func (r *Runner) Run(ctx context.Context, reason string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &Snapshot{
		ID:       uuid.NewString(),
		Document: r.source.Name(),
		Reason:   reason,
		LoadedAt: time.Now(),
	}
	log := logging.New("analysis").With("document", snap.Document, "snapshot", snap.ID[:8])
	log.Info("starting run", "reason", reason)
	start := time.Now()

	if err := r.build(ctx, snap); err != nil {
		snap.Err = err
		snap.Error = err.Error()
		log.Error("run failed", "error", err)
		r.publishStatus(pubsub.StateError, err.Error(), snap.Document, totalSteps, totalSteps)
	} else {
		log.Info("run complete",
			"nodes", snap.Stats.Nodes,
			"links", snap.Stats.Links,
			"styledNodes", len(snap.Result.Nodes),
			"styledLinks", len(snap.Result.Links),
			"durationMs", time.Since(start).Milliseconds())
		r.publishStatus(pubsub.StateReady, "Document ready", snap.Document, totalSteps, totalSteps)
	}

	r.snapMu.Lock()
	r.current = snap
	r.snapMu.Unlock()

	r.publishGraph(snap)
	return snap, snap.Err
}

// Check loads and parses the document and compiles every style expression, without
// resolving. All rule defects are reported together.
func (r *Runner) Check(ctx context.Context) error {
	data, err := r.source.Load(ctx)
	if err != nil {
		return err
	}
	doc, err := r.parser.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.source.Name(), err)
	}
	return r.resolver.Validate(doc)
}

// Follow re-runs for every change that warrants a reload, until changes is closed or
// ctx is done. Failed runs are logged and the loop keeps going.
func (r *Runner) Follow(ctx context.Context, changes <-chan watcher.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			change := watcher.AnalyzeChanges(ev)
			if !change.NeedReload {
				logging.Info("keeping current snapshot", "reason", change.Reason)
				continue
			}
			// Run logs its own failure
			_, _ = r.Run(ctx, change.Reason)
		}
	}
}

func (r *Runner) build(ctx context.Context, snap *Snapshot) error {
	r.publishStatus(pubsub.StateLoading, "Loading document...", snap.Document, 1, totalSteps)
	data, err := r.source.Load(ctx)
	if err != nil {
		return err
	}

	r.publishStatus(pubsub.StateParsing, "Parsing document...", snap.Document, 2, totalSteps)
	doc, err := r.parser.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", snap.Document, err)
	}
	snap.Graph = doc
	snap.Title = doc.Title

	if err := ctx.Err(); err != nil {
		return err
	}

	r.publishStatus(pubsub.StateResolving, "Resolving styles...", snap.Document, 3, totalSteps)
	if r.opts.Strict {
		if err := r.resolver.Validate(doc); err != nil {
			return fmt.Errorf("invalid style rules:\n%w", err)
		}
	}
	result, err := r.resolver.Resolve(doc)
	if err != nil {
		return err
	}
	snap.Result = result
	snap.Elements = model.BuildElements(doc, result)

	ix := graph.Build(doc)
	snap.Stats = ix.Stats(doc)
	snap.Roots = ix.Roots()
	snap.Cycles = ix.Cycles()
	snap.Dangling = ix.Dangling()
	snap.Duplicates = ix.DuplicateLinks()

	for _, l := range snap.Dangling {
		logging.Debug("link references an undeclared node", "link", l.ID())
	}
	return nil
}

func (r *Runner) publishStatus(state, message, document string, step, total int) {
	if r.publisher == nil {
		return
	}
	status := pubsub.GraphStatus{State: state, Message: message, Document: document, Step: step, Total: total}
	if err := r.publisher.Publish(pubsub.TopicGraphStatus, state, status); err != nil {
		logging.Debug("status not published", "error", err)
	}
}

func (r *Runner) publishGraph(snap *Snapshot) {
	if r.publisher == nil {
		return
	}
	nodes, links, styled := model.Counts(snap.Elements)
	update := pubsub.GraphUpdate{
		SnapshotID: snap.ID,
		Title:      snap.Title,
		Nodes:      nodes,
		Links:      links,
		Styled:     styled,
		Error:      snap.Error,
	}
	eventType := "snapshot"
	if snap.Err != nil {
		eventType = "error"
	}
	if err := r.publisher.Publish(pubsub.TopicGraph, eventType, update); err != nil {
		logging.Debug("graph update not published", "error", err)
	}
}
