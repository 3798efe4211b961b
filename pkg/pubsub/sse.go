package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ritzau/dgml-visualizer/pkg/logging"
)

// ErrClosed is returned once the broker has been closed.
var ErrClosed = errors.New("publisher is closed")

const subscriberBuffer = 64

// Retention controls how many events a topic keeps for late subscribers.
type Retention struct {
	Keep      int  // events kept; 0 keeps none
	ReplayAll bool // replay every kept event instead of only the newest
}

// Broker is an in-memory Publisher whose subscribers are streamed over SSE.
type Broker struct {
	mu        sync.Mutex
	subs      map[string]map[*subscription]struct{}
	seq       map[string]int
	history   map[string][]Event
	retention map[string]Retention
	closed    bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs:      make(map[string]map[*subscription]struct{}),
		seq:       make(map[string]int),
		history:   make(map[string][]Event),
		retention: make(map[string]Retention),
	}
}

// Retain sets the retention policy of a topic.
func (b *Broker) Retain(topic string, r Retention) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.retention[topic] = r
}

func (b *Broker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}

	sub := &subscription{
		topic:  topic,
		events: make(chan Event, subscriberBuffer),
		done:   make(chan struct{}),
		broker: b,
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}

	replay := b.history[topic]
	if !b.retention[topic].ReplayAll && len(replay) > 1 {
		replay = replay[len(replay)-1:]
	}
	if len(replay) > subscriberBuffer {
		replay = replay[len(replay)-subscriberBuffer:]
	}
	// Queued under the lock so replayed events precede any concurrent Publish.
	for _, ev := range replay {
		sub.events <- ev
	}
	b.mu.Unlock()

	if len(replay) > 0 {
		logging.Trace("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func (b *Broker) Publish(topic, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.seq[topic]++
	ev := Event{Topic: topic, Type: eventType, Data: payload, Seq: b.seq[topic]}

	if keep := b.retention[topic].Keep; keep > 0 {
		h := append(b.history[topic], ev)
		if len(h) > keep {
			h = h[len(h)-keep:]
		}
		b.history[topic] = h
	}

	for sub := range b.subs[topic] {
		select {
		case sub.events <- ev:
		default:
			logging.Warn("subscriber too slow, dropping event", "topic", topic, "seq", ev.Seq)
		}
	}
	return nil
}

// Close ends every subscription. Their event channels are closed.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, set := range b.subs {
		for sub := range set {
			sub.finish()
		}
	}
	b.subs = make(map[string]map[*subscription]struct{})
	return nil
}

func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set := b.subs[sub.topic]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.topic)
		}
	}
	sub.finish()
}

type subscription struct {
	topic  string
	events chan Event
	done   chan struct{}
	broker *Broker
	once   sync.Once
}

func (s *subscription) Topic() string        { return s.topic }
func (s *subscription) Events() <-chan Event { return s.events }

// Close unsubscribes and closes the event channel.
func (s *subscription) Close() error {
	s.broker.remove(s)
	return nil
}

// finish must be called with the broker lock held.
func (s *subscription) finish() {
	s.once.Do(func() {
		close(s.events)
		close(s.done)
	})
}

// WriteSSE writes one event as an SSE data frame.
func WriteSSE(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, payload)
	return err
}

// Stream subscribes to topic and writes its events to w as Server-Sent Events until
// the request ends or the publisher is closed.
func Stream(w http.ResponseWriter, r *http.Request, p Publisher, topic string) {
	flusher, _ := w.(http.Flusher)

	sub, err := p.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Safari waits for the first bytes before opening the stream
	fmt.Fprint(w, ": connected\n\n")
	if flusher != nil {
		flusher.Flush()
	}

	for ev := range sub.Events() {
		if err := WriteSSE(w, ev); err != nil {
			logging.DebugContext(r.Context(), "SSE client went away", "topic", topic, "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
