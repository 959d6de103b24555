package selection

import (
	"github.com/leapstack-labs/scriptdeps/internal/dag"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// ScriptInfo is a related script with its scheduled jobs.
type ScriptInfo struct {
	Name    string   `json:"name"`
	DA2Jobs []string `json:"da2_jobs"`
	OpsJobs []string `json:"ops_jobs"`
}

// RootReport is the info report of one script: its jobs and the four
// relation sets, each related script carrying its own jobs.
type RootReport struct {
	ScriptInfo
	DirectCalls      []ScriptInfo `json:"direct_calls"`
	CalledBy         []ScriptInfo `json:"called_by"`
	IndirectCalls    []ScriptInfo `json:"indirect_calls"`
	IndirectCalledBy []ScriptInfo `json:"indirect_called_by"`
}

// Describe builds the report for name. The second result is false when
// name has no record.
func Describe(g *dag.Graph, name string) (RootReport, bool) {
	node, ok := g.GetNode(name)
	if !ok {
		return RootReport{}, false
	}
	rel := g.Relations(name)
	return RootReport{
		ScriptInfo:       infoOf(node.Record),
		DirectCalls:      infos(g, rel.DirectCalls),
		CalledBy:         infos(g, rel.CalledBy),
		IndirectCalls:    infos(g, rel.IndirectCalls),
		IndirectCalledBy: infos(g, rel.IndirectCalledBy),
	}, true
}

// Report describes every pinned root in pin order.
func (s *Set) Report() []RootReport {
	out := make([]RootReport, 0, len(s.roots))
	for _, root := range s.roots {
		if rep, ok := Describe(s.graph, root); ok {
			out = append(out, rep)
		}
	}
	return out
}

func infoOf(rec *core.ScriptRecord) ScriptInfo {
	return ScriptInfo{
		Name:    rec.Name,
		DA2Jobs: append([]string{}, rec.DA2Jobs...),
		OpsJobs: append([]string{}, rec.OpsJobs...),
	}
}

func infos(g *dag.Graph, names []string) []ScriptInfo {
	out := make([]ScriptInfo, 0, len(names))
	for _, name := range names {
		if node, ok := g.GetNode(name); ok {
			out = append(out, infoOf(node.Record))
		}
	}
	return out
}
