package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/dgml-visualizer/pkg/analysis"
	"github.com/ritzau/dgml-visualizer/pkg/logging"
	"github.com/ritzau/dgml-visualizer/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// Snapshots provides the snapshot to serve.
type Snapshots interface {
	Current() *analysis.Snapshot
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	snapshots Snapshots
	publisher pubsub.Publisher
}

// NewServer creates a server for the snapshots of a runner. publisher may be nil, in
// which case the page does not follow reloads.
func NewServer(snapshots Snapshots, publisher pubsub.Publisher) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		snapshots: snapshots,
		publisher: publisher,
	}
	s.setupRoutes()
	return s
}

// NewPublisher creates the broker the runner publishes to and the server streams from.
// New subscribers only get the latest status and the latest graph.
func NewPublisher() *pubsub.Broker {
	b := pubsub.NewBroker()
	b.Retain(pubsub.TopicGraphStatus, pubsub.Retention{Keep: 10})
	b.Retain(pubsub.TopicGraph, pubsub.Retention{Keep: 5})
	return b
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/elements", s.handleElements).Methods("GET")
	s.router.HandleFunc("/api/styles", s.handleStyles).Methods("GET")
	s.router.HandleFunc("/api/base", s.handleBase).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("embedded static files missing", "error", err)
	}
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	live := s.publisher != nil

	snap := s.snapshots.Current()
	var err error
	switch {
	case snap == nil:
		view := NewPageView("Loading", "", "", nil)
		view.Live = live
		err = RenderPage(w, view)
	case snap.Err != nil && live:
		err = renderLiveError(w, snap.Err, snap.ID)
	case snap.Err != nil:
		err = RenderError(w, snap.Err)
	default:
		view := NewPageView(snap.Title, snap.Document, snap.ID, snap.Elements)
		view.Live = live
		err = RenderPage(w, view)
	}
	if err != nil {
		logging.ErrorContext(r.Context(), "failed to render page", "error", err)
	}
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicGraph && topic != pubsub.TopicGraphStatus {
		http.Error(w, "unknown topic", http.StatusNotFound)
		return
	}
	if s.publisher == nil {
		http.Error(w, "live updates are disabled", http.StatusServiceUnavailable)
		return
	}
	pubsub.Stream(w, r, s.publisher, topic)
}

// current returns the served snapshot, answering the request itself when there is
// no usable one.
func (s *Server) current(w http.ResponseWriter) *analysis.Snapshot {
	snap := s.snapshots.Current()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "document not loaded yet"})
		return nil
	}
	return snap
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if snap := s.current(w); snap != nil {
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	snap := s.current(w)
	if snap == nil {
		return
	}
	if snap.Err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": snap.Error})
		return
	}
	writeJSON(w, http.StatusOK, snap.Elements)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	snap := s.current(w)
	if snap == nil {
		return
	}
	if snap.Err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": snap.Error})
		return
	}
	writeJSON(w, http.StatusOK, snap.Result)
}

func (s *Server) handleBase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"styles": BaseStyles(),
		"layout": Layout(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if snap := s.snapshots.Current(); snap == nil {
		status = "loading"
	} else if snap.Err != nil {
		status = "error"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// writeJSON encodes v before committing the status so an encoding failure is
// reported as a 500 rather than an empty success.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Debug("failed to write response", "error", err)
	}
}

// Start serves on port until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// SSE streams end once the publisher closes; Shutdown waits for them
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
