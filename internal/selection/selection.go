// Package selection maintains the set of pinned scripts and the visible
// subgraph derived from them. Every change is reported as renderer events.
//
// A Set is not safe for concurrent use; callers serialize access.
package selection

import (
	"fmt"

	"github.com/leapstack-labs/scriptdeps/internal/dag"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// Outcome describes what an operation did.
type Outcome string

// Operation outcomes.
const (
	OutcomeAdded         Outcome = "added"
	OutcomeAlreadyPinned Outcome = "already_pinned"
	OutcomeUnknown       Outcome = "unknown"
	OutcomeRemoved       Outcome = "removed"
	OutcomeNotPinned     Outcome = "not_pinned"
	OutcomeCleared       Outcome = "cleared"
)

// Changed reports whether the outcome mutated the selection.
func (o Outcome) Changed() bool {
	return o == OutcomeAdded || o == OutcomeRemoved || o == OutcomeCleared
}

// Message returns the user-facing notice for the outcome.
func (o Outcome) Message(name string) string {
	switch o {
	case OutcomeAdded:
		return fmt.Sprintf("Added %s.", name)
	case OutcomeAlreadyPinned:
		return fmt.Sprintf("Script %s already added.", name)
	case OutcomeUnknown:
		return fmt.Sprintf("Unknown script %s.", name)
	case OutcomeRemoved:
		return fmt.Sprintf("Removed %s.", name)
	case OutcomeNotPinned:
		return fmt.Sprintf("Script %s is not pinned.", name)
	case OutcomeCleared:
		return "Selection cleared."
	default:
		return string(o)
	}
}

// Set is the interactive selection: pinned roots plus the visible graph.
type Set struct {
	graph *dag.Graph
	sink  core.EventSink
	roots []string
	view  *view
}

// New creates an empty selection over g. sink may be nil.
func New(g *dag.Graph, sink core.EventSink) *Set {
	return &Set{
		graph: g,
		sink:  sink,
		view:  newView(),
	}
}

// SetSink replaces the event sink. sink may be nil.
func (s *Set) SetSink(sink core.EventSink) {
	s.sink = sink
}

// Add pins name and merges its relations into the visible graph.
// Unknown names materialize a placeholder and change nothing.
func (s *Set) Add(name string) (Outcome, []core.Event) {
	if s.IsPinned(name) {
		return OutcomeAlreadyPinned, nil
	}
	if _, ok := s.graph.GetNode(name); !ok {
		return OutcomeUnknown, nil
	}

	s.roots = append(s.roots, name)
	var events []core.Event
	mergeRoot(s.view, s.graph, name, func(e core.Event) {
		events = append(events, e)
	})
	s.emit(events)
	return OutcomeAdded, events
}

// Remove unpins name. The visible graph is recomputed from the remaining
// roots and the difference is emitted. Removing the last root clears it.
func (s *Set) Remove(name string) (Outcome, []core.Event) {
	idx := s.indexOf(name)
	if idx < 0 {
		return OutcomeNotPinned, nil
	}
	s.roots = append(s.roots[:idx], s.roots[idx+1:]...)
	if len(s.roots) == 0 {
		s.roots = nil
	}
	return OutcomeRemoved, s.rebuild()
}

// Clear unpins every root and empties the visible graph.
func (s *Set) Clear() (Outcome, []core.Event) {
	s.roots = nil
	return OutcomeCleared, s.rebuild()
}

func (s *Set) rebuild() []core.Event {
	next := buildView(s.graph, s.roots)
	events := diff(s.view, next)
	s.view = next
	s.emit(events)
	return events
}

func (s *Set) emit(events []core.Event) {
	if s.sink != nil && len(events) > 0 {
		s.sink.Emit(events)
	}
}

func (s *Set) indexOf(name string) int {
	for i, root := range s.roots {
		if root == name {
			return i
		}
	}
	return -1
}

// IsPinned reports whether name is a root.
func (s *Set) IsPinned(name string) bool {
	return s.indexOf(name) >= 0
}

// IsEmpty reports whether no root is pinned.
func (s *Set) IsEmpty() bool {
	return len(s.roots) == 0
}

// Roots returns the pinned names in pin order.
func (s *Set) Roots() []string {
	return append([]string{}, s.roots...)
}

// Nodes returns the visible nodes in insertion order.
func (s *Set) Nodes() []string {
	return append([]string{}, s.view.nodes...)
}

// Edges returns the visible edges in insertion order.
func (s *Set) Edges() []Edge {
	out := make([]Edge, 0, len(s.view.edges))
	for _, key := range s.view.edges {
		out = append(out, Edge{From: key.from, To: key.to, Class: s.view.class[key]})
	}
	return out
}

// Relations returns the relation sets of every root, in pin order.
func (s *Set) Relations() []core.Relations {
	out := make([]core.Relations, 0, len(s.roots))
	for _, root := range s.roots {
		out = append(out, s.graph.Relations(root))
	}
	return out
}

// State is a serializable copy of the selection.
type State struct {
	Roots []string `json:"roots"`
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// State returns a copy of the current selection.
func (s *Set) State() State {
	return State{Roots: s.Roots(), Nodes: s.Nodes(), Edges: s.Edges()}
}
