package dag

import (
	"reflect"
	"sync"
	"testing"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// buildGraph creates a graph from name -> calls pairs, in order.
func buildGraph(pairs ...any) *Graph {
	ds := core.NewDataset()
	for i := 0; i < len(pairs); i += 2 {
		ds.Add(&core.ScriptRecord{Name: pairs[i].(string), Calls: pairs[i+1].([]string)})
	}
	return New(ds)
}

func sampleGraph() *Graph {
	return buildGraph(
		"A", []string{"B", "C", "D"},
		"B", []string{"C", "E"},
		"C", []string{"F", "G"},
		"D", []string{"E", "H", "Ghost"},
		"E", []string{"F"},
		"F", []string{},
		"G", []string{},
		"H", []string{},
	)
}

func assertNames(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s: expected %v, got %v", what, want, got)
	}
}

func TestGraph_DirectRelations(t *testing.T) {
	g := sampleGraph()

	assertNames(t, "DirectCalls(A)", g.DirectCalls("A"), []string{"B", "C", "D"})
	assertNames(t, "CalledBy(C)", g.CalledBy("C"), []string{"A", "B"})
	assertNames(t, "CalledBy(F)", g.CalledBy("F"), []string{"C", "E"})
	assertNames(t, "CalledBy(A)", g.CalledBy("A"), nil)
}

func TestGraph_IndirectCalls(t *testing.T) {
	g := sampleGraph()

	got := g.IndirectCalls("A")
	assertNames(t, "IndirectCalls(A)", got, []string{"E", "F", "G", "H"})
	for _, name := range got {
		if name == "A" {
			t.Error("IndirectCalls(A) must not contain A")
		}
		for _, direct := range g.DirectCalls("A") {
			if name == direct {
				t.Errorf("IndirectCalls(A) contains direct callee %s", name)
			}
		}
	}

	// depth 2 only, not transitive closure
	assertNames(t, "IndirectCalls(B)", g.IndirectCalls("B"), []string{"F", "G"})
}

func TestGraph_IndirectCalledBy(t *testing.T) {
	g := sampleGraph()

	assertNames(t, "IndirectCalledBy(E)", g.IndirectCalledBy("E"), []string{"A"})
	assertNames(t, "IndirectCalledBy(C)", g.IndirectCalledBy("C"), nil)
	assertNames(t, "IndirectCalledBy(F)", g.IndirectCalledBy("F"), []string{"A", "B", "D"})
}

func TestGraph_PlaceholdersFiltered(t *testing.T) {
	g := sampleGraph()

	assertNames(t, "DirectCalls(D)", g.DirectCalls("D"), []string{"E", "H"})
	if g.PlaceholderCount() != 1 {
		t.Errorf("expected 1 placeholder, got %d", g.PlaceholderCount())
	}

	node, ok := g.GetNode("Ghost")
	if ok {
		t.Error("expected Ghost to be a placeholder")
	}
	if !node.Record.Placeholder {
		t.Error("expected placeholder record")
	}

	// querying an unknown name materializes it once
	rel := g.Relations("Nobody")
	if len(rel.DirectCalls)+len(rel.CalledBy)+len(rel.IndirectCalls)+len(rel.IndirectCalledBy) != 0 {
		t.Errorf("expected empty relations, got %+v", rel)
	}
	g.Relations("Nobody")
	if g.PlaceholderCount() != 2 {
		t.Errorf("expected 2 placeholders, got %d", g.PlaceholderCount())
	}
	if g.Has("Nobody") {
		t.Error("placeholder must not count as a record")
	}
}

func TestGraph_IndirectExcludesUnresolvedDirect(t *testing.T) {
	// X calls Ghost directly and Y calls Ghost; Ghost is excluded either way
	g := buildGraph(
		"X", []string{"Y", "Ghost"},
		"Y", []string{"Ghost", "Z"},
		"Z", []string{},
	)
	assertNames(t, "IndirectCalls(X)", g.IndirectCalls("X"), []string{"Z"})
}

func TestGraph_SelfCall(t *testing.T) {
	g := buildGraph("Loop", []string{"Loop", "Other"}, "Other", []string{"Loop"})

	assertNames(t, "DirectCalls(Loop)", g.DirectCalls("Loop"), []string{"Loop", "Other"})
	assertNames(t, "IndirectCalls(Loop)", g.IndirectCalls("Loop"), nil)

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected a cycle")
	}
	if len(path) < 2 || path[0] != path[len(path)-1] {
		t.Errorf("expected closed cycle path, got %v", path)
	}
}

func TestGraph_HasCycle_None(t *testing.T) {
	hasCycle, path := sampleGraph().HasCycle()
	if hasCycle {
		t.Errorf("expected no cycle, got %v", path)
	}
}

func TestGraph_Counts(t *testing.T) {
	g := sampleGraph()

	if g.NodeCount() != 8 {
		t.Errorf("expected 8 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 10 {
		t.Errorf("expected 10 edges, got %d", g.EdgeCount())
	}
	assertNames(t, "Unresolved", g.Unresolved(), []string{"Ghost"})
	assertNames(t, "Names", g.Names(), []string{"A", "B", "C", "D", "E", "F", "G", "H"})
}

func TestGraph_EntryPointsAndLeaves(t *testing.T) {
	g := sampleGraph()

	assertNames(t, "GetEntryPoints", g.GetEntryPoints(), []string{"A"})
	assertNames(t, "GetLeaves", g.GetLeaves(), []string{"F", "G", "H"})
}

func TestGraph_NilDataset(t *testing.T) {
	g := New(nil)
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", g.NodeCount())
	}
	assertNames(t, "DirectCalls", g.DirectCalls("A"), nil)
}

func TestGraph_ConcurrentQueries(t *testing.T) {
	g := sampleGraph()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Relations("D")
			g.Relations("Unknown")
		}()
	}
	wg.Wait()

	if g.PlaceholderCount() != 2 {
		t.Errorf("expected 2 placeholders, got %d", g.PlaceholderCount())
	}
}
