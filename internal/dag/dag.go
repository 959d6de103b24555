// Package dag provides the call graph over a script dataset.
// It answers direct and depth-2 caller/callee queries and supports cycle
// detection for reporting.
package dag

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// Node represents a script in the graph.
type Node struct {
	// ID is the canonical script name
	ID string
	// Record is the script record; for placeholders it is synthesized
	Record *core.ScriptRecord
}

// Graph is the call graph of a dataset. It is immutable after New except for
// the placeholder table, which is safe for concurrent use.
type Graph struct {
	nodes   map[string]*Node
	order   []string
	edges   map[string][]string // caller -> callees
	parents map[string][]string // callee -> callers, in dataset order

	mu           sync.Mutex
	placeholders map[string]*Node
}

// New builds the graph for ds. Calls to names without a record are kept as
// edges and resolved to placeholders on first lookup.
func New(ds *core.Dataset) *Graph {
	g := &Graph{
		nodes:        make(map[string]*Node),
		edges:        make(map[string][]string),
		parents:      make(map[string][]string),
		placeholders: make(map[string]*Node),
	}
	if ds == nil {
		return g
	}

	for _, rec := range ds.Records() {
		g.nodes[rec.Name] = &Node{ID: rec.Name, Record: rec}
		g.order = append(g.order, rec.Name)
	}
	for _, rec := range ds.Records() {
		for _, callee := range rec.Calls {
			if !contains(g.edges[rec.Name], callee) {
				g.edges[rec.Name] = append(g.edges[rec.Name], callee)
			}
			if !contains(g.parents[callee], rec.Name) {
				g.parents[callee] = append(g.parents[callee], rec.Name)
			}
		}
	}
	return g
}

// Has reports whether name has a real record.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// GetNode returns the node for name, materializing a placeholder when the
// name has no record. The second result is false for placeholders.
func (g *Graph) GetNode(name string) (*Node, bool) {
	if node, ok := g.nodes[name]; ok {
		return node, true
	}
	return g.placeholder(name), false
}

func (g *Graph) placeholder(name string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, ok := g.placeholders[name]
	if !ok {
		node = &Node{ID: name, Record: core.NewPlaceholder(name)}
		g.placeholders[name] = node
	}
	return node
}

// PlaceholderCount returns the number of placeholders materialized so far.
func (g *Graph) PlaceholderCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.placeholders)
}

// DirectCalls returns the scripts n calls.
func (g *Graph) DirectCalls(n string) []string {
	g.GetNode(n)
	return g.visible(g.edges[n])
}

// CalledBy returns the scripts that call n, in dataset order.
func (g *Graph) CalledBy(n string) []string {
	g.GetNode(n)
	return g.visible(g.parents[n])
}

// IndirectCalls returns the scripts reachable from n in exactly two calls,
// excluding n and its direct callees.
func (g *Graph) IndirectCalls(n string) []string {
	g.GetNode(n)
	return g.visible(secondHop(n, g.edges))
}

// IndirectCalledBy returns the scripts that reach n in exactly two calls,
// excluding n and its direct callers.
func (g *Graph) IndirectCalledBy(n string) []string {
	g.GetNode(n)
	return g.visible(secondHop(n, g.parents))
}

// Relations returns all four relation sets for n.
func (g *Graph) Relations(n string) core.Relations {
	return core.Relations{
		Name:             n,
		DirectCalls:      g.DirectCalls(n),
		CalledBy:         g.CalledBy(n),
		IndirectCalls:    g.IndirectCalls(n),
		IndirectCalledBy: g.IndirectCalledBy(n),
	}
}

// secondHop walks adjacency twice from n. Names one hop away, including
// unresolved ones, are excluded from the result.
func secondHop(n string, adj map[string][]string) []string {
	first := adj[n]
	var out []string
	for _, mid := range first {
		for _, far := range adj[mid] {
			if far == n || contains(first, far) || contains(out, far) {
				continue
			}
			out = append(out, far)
		}
	}
	return out
}

// visible drops names without a record, materializing their placeholders.
func (g *Graph) visible(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := g.GetNode(name); ok {
			out = append(out, name)
		}
	}
	return out
}

// Names returns the script names in dataset order.
func (g *Graph) Names() []string {
	return append([]string{}, g.order...)
}

// NodeCount returns the number of scripts in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of call edges between scripts with records.
func (g *Graph) EdgeCount() int {
	count := 0
	for caller, callees := range g.edges {
		if !g.Has(caller) {
			continue
		}
		for _, callee := range callees {
			if g.Has(callee) {
				count++
			}
		}
	}
	return count
}

// Unresolved returns the called names that have no record, sorted.
func (g *Graph) Unresolved() []string {
	var out []string
	for callee := range g.parents {
		if !g.Has(callee) {
			out = append(out, callee)
		}
	}
	sort.Strings(out)
	return out
}

// HasCycle returns true if the call graph contains a cycle, along with the cycle path.
// Self-calls count as cycles.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !g.Has(childID) {
				continue
			}
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// GetEntryPoints returns scripts that no other script calls, in dataset order.
func (g *Graph) GetEntryPoints() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.visible(g.parents[id])) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// GetLeaves returns scripts that call no other script, in dataset order.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.visible(g.edges[id])) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
