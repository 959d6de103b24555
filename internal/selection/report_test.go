package selection

import (
	"testing"

	"github.com/leapstack-labs/scriptdeps/internal/dag"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	ds := core.NewDataset()
	for _, rec := range []*core.ScriptRecord{
		{Name: "Load", DA2Jobs: []string{"NIGHTLY"}, OpsJobs: []string{}, Calls: []string{"Validate"}},
		{Name: "Validate", DA2Jobs: []string{}, OpsJobs: []string{"OPS1", "OPS2"}, Calls: []string{"Post", "Missing"}},
		{Name: "Post", DA2Jobs: []string{}, OpsJobs: []string{}, Calls: []string{}},
	} {
		require.True(t, ds.Add(rec))
	}
	g := dag.New(ds)

	rep, ok := Describe(g, "Validate")
	require.True(t, ok)
	assert.Equal(t, "Validate", rep.Name)
	assert.Equal(t, []string{"OPS1", "OPS2"}, rep.OpsJobs)
	assert.Equal(t, []ScriptInfo{{Name: "Post", DA2Jobs: []string{}, OpsJobs: []string{}}}, rep.DirectCalls)
	assert.Equal(t, []ScriptInfo{{Name: "Load", DA2Jobs: []string{"NIGHTLY"}, OpsJobs: []string{}}}, rep.CalledBy)
	assert.Empty(t, rep.IndirectCalls)
	assert.Empty(t, rep.IndirectCalledBy)

	rep, ok = Describe(g, "Load")
	require.True(t, ok)
	assert.Equal(t, []ScriptInfo{{Name: "Post", DA2Jobs: []string{}, OpsJobs: []string{}}}, rep.IndirectCalls)

	_, ok = Describe(g, "Missing")
	assert.False(t, ok, "placeholders have no report")
	_, ok = Describe(g, "Nope")
	assert.False(t, ok)
}

func TestSet_Report(t *testing.T) {
	s := New(sampleGraph(t), nil)
	assert.Empty(t, s.Report())

	s.Add("D")
	s.Add("A")
	reports := s.Report()
	require.Len(t, reports, 2)
	assert.Equal(t, "D", reports[0].Name)
	assert.Equal(t, "A", reports[1].Name)

	var callers []string
	for _, info := range reports[0].CalledBy {
		callers = append(callers, info.Name)
	}
	assert.Equal(t, []string{"B", "C", "X"}, callers)
	require.Len(t, reports[0].IndirectCalledBy, 1)
	assert.Equal(t, "A", reports[0].IndirectCalledBy[0].Name)
}
