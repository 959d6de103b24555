package selection

import (
	"github.com/leapstack-labs/scriptdeps/internal/dag"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// Edge is one visible edge.
type Edge struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Class core.EdgeClass `json:"class"`
}

type edgeKey struct {
	from, to string
}

// view is a visible node/edge set with stable insertion order.
type view struct {
	nodes   []string
	nodeSet map[string]struct{}
	edges   []edgeKey
	class   map[edgeKey]core.EdgeClass
}

func newView() *view {
	return &view{
		nodeSet: make(map[string]struct{}),
		class:   make(map[edgeKey]core.EdgeClass),
	}
}

func (v *view) hasNode(name string) bool {
	_, ok := v.nodeSet[name]
	return ok
}

// addNode reports whether name was new.
func (v *view) addNode(name string) bool {
	if v.hasNode(name) {
		return false
	}
	v.nodeSet[name] = struct{}{}
	v.nodes = append(v.nodes, name)
	return true
}

// addEdge inserts or upgrades an edge. Direct wins over indirect.
// It returns the previous class ("" if the edge was new) and whether anything changed.
func (v *view) addEdge(from, to string, class core.EdgeClass) (core.EdgeClass, bool) {
	key := edgeKey{from, to}
	prev, ok := v.class[key]
	if !ok {
		v.edges = append(v.edges, key)
		v.class[key] = class
		return "", true
	}
	if prev == core.EdgeIndirect && class == core.EdgeDirect {
		v.class[key] = class
		return prev, true
	}
	return prev, false
}

// buildView derives the visible set for roots from scratch.
func buildView(g *dag.Graph, roots []string) *view {
	v := newView()
	for _, root := range roots {
		mergeRoot(v, g, root, nil)
	}
	return v
}

// mergeRoot adds root's relations to v, passing each change to emit when non-nil.
// Placeholders never reach v because graph queries filter them.
func mergeRoot(v *view, g *dag.Graph, root string, emit func(core.Event)) {
	rel := g.Relations(root)

	node := func(name string) {
		if v.addNode(name) && emit != nil {
			emit(core.Event{Type: core.EventAddNode, Node: name})
		}
	}
	edge := func(from, to string, class core.EdgeClass) {
		prev, changed := v.addEdge(from, to, class)
		if !changed || emit == nil {
			return
		}
		if prev != "" {
			emit(core.Event{Type: core.EventRemoveEdge, From: from, To: to})
		}
		emit(core.Event{Type: core.EventAddEdge, From: from, To: to, Class: class})
	}

	node(root)
	for _, names := range [][]string{rel.DirectCalls, rel.CalledBy, rel.IndirectCalls, rel.IndirectCalledBy} {
		for _, name := range names {
			node(name)
		}
	}
	for _, callee := range rel.DirectCalls {
		edge(root, callee, core.EdgeDirect)
	}
	for _, callee := range rel.IndirectCalls {
		edge(root, callee, core.EdgeIndirect)
	}
	for _, caller := range rel.CalledBy {
		edge(caller, root, core.EdgeDirect)
	}
	for _, caller := range rel.IndirectCalledBy {
		edge(caller, root, core.EdgeIndirect)
	}
}

// diff returns the events that turn old into next. Removals come first,
// edges before nodes, in old order; additions follow, nodes before edges,
// in next order. A class change is a removeEdge followed by an addEdge.
func diff(old, next *view) []core.Event {
	var events []core.Event
	for _, key := range old.edges {
		if cls, ok := next.class[key]; !ok || cls != old.class[key] {
			events = append(events, core.Event{Type: core.EventRemoveEdge, From: key.from, To: key.to})
		}
	}
	for _, name := range old.nodes {
		if !next.hasNode(name) {
			events = append(events, core.Event{Type: core.EventRemoveNode, Node: name})
		}
	}
	for _, name := range next.nodes {
		if !old.hasNode(name) {
			events = append(events, core.Event{Type: core.EventAddNode, Node: name})
		}
	}
	for _, key := range next.edges {
		if cls, ok := old.class[key]; !ok || cls != next.class[key] {
			events = append(events, core.Event{Type: core.EventAddEdge, From: key.from, To: key.to, Class: next.class[key]})
		}
	}
	return events
}
