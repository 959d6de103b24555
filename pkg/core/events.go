package core

import "context"

// EdgeClass classifies a visible edge relative to the pinned roots.
type EdgeClass string

// Edge classes. A pair of names is never both; direct wins.
const (
	EdgeDirect   EdgeClass = "direct"
	EdgeIndirect EdgeClass = "indirect"
)

// EventType names a renderer delta.
type EventType string

// Renderer delta types.
const (
	EventAddNode    EventType = "addNode"
	EventRemoveNode EventType = "removeNode"
	EventAddEdge    EventType = "addEdge"
	EventRemoveEdge EventType = "removeEdge"
)

// Event is one incremental change to the visible graph.
type Event struct {
	Type EventType `json:"type"`
	// Node is set for addNode/removeNode
	Node string `json:"node,omitempty"`
	// From/To are set for addEdge/removeEdge
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	// Class is set for addEdge
	Class EdgeClass `json:"class,omitempty"`
}

// EventSink receives renderer deltas in order.
type EventSink interface {
	Emit(events []Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(events []Event)

// Emit calls f(events).
func (f EventSinkFunc) Emit(events []Event) {
	f(events)
}

// Relations is the query response for one script.
type Relations struct {
	Name             string   `json:"name"`
	DirectCalls      []string `json:"direct_calls"`
	CalledBy         []string `json:"called_by"`
	IndirectCalls    []string `json:"indirect_calls"`
	IndirectCalledBy []string `json:"indirect_called_by"`
}

// PathProvider supplies the path of the dump to load.
// Implementations may prompt a user; the core never selects files itself.
type PathProvider interface {
	Path(ctx context.Context) (string, error)
}
