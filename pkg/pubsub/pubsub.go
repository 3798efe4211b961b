package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published while a document is loaded and styled.
const (
	TopicGraphStatus = "graph_status"
	TopicGraph       = "graph"
)

// Graph status states, in the order a successful load passes through them.
const (
	StateLoading   = "loading"
	StateParsing   = "parsing"
	StateResolving = "resolving"
	StateReady     = "ready"
	StateError     = "error"
)

// Event is one published message. Seq increases per topic.
type Event struct {
	Topic string          `json:"topic"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Seq   int             `json:"seq"`
}

// Subscription delivers the events of a single topic.
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher fans events out to topic subscribers.
type Publisher interface {
	// Subscribe registers for a topic until ctx is done or the subscription is closed.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish marshals data and sends it to every current subscriber of topic.
	Publish(topic, eventType string, data any) error

	Close() error
}

// GraphStatus reports progress of a load.
type GraphStatus struct {
	State    string `json:"state"`
	Message  string `json:"message"`
	Document string `json:"document"`
	Step     int    `json:"step"`
	Total    int    `json:"total"`
}

// GraphUpdate announces a new snapshot. Clients fetch the elements from the API.
type GraphUpdate struct {
	SnapshotID string `json:"snapshotId"`
	Title      string `json:"title"`
	Nodes      int    `json:"nodes"`
	Links      int    `json:"links"`
	Styled     int    `json:"styled"`
	Error      string `json:"error,omitempty"`
}
