package core

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ScriptA:dba", "ScriptA"},
		{"  ScriptA  ", "ScriptA"},
		{" ScriptA :dba:extra", "ScriptA"},
		{"ScriptA", "ScriptA"},
		{":dba", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalName(tt.in), "CanonicalName(%q)", tt.in)
	}
}

func TestTag_Set(t *testing.T) {
	var tag Tag
	assert.Equal(t, "", tag.String())
	assert.False(t, tag.Present)

	tag.Set("")
	assert.True(t, tag.Present)
	assert.Equal(t, UnknownValue, tag.String())

	tag.Set("DA2_Job1")
	assert.Equal(t, "DA2_Job1", tag.String())
}

func TestDataset_FirstRecordWins(t *testing.T) {
	ds := NewDataset()

	assert.True(t, ds.Add(&ScriptRecord{Name: "B", Calls: []string{"A"}}))
	assert.True(t, ds.Add(&ScriptRecord{Name: "A"}))
	assert.False(t, ds.Add(&ScriptRecord{Name: "B", Calls: []string{"C"}}))
	assert.False(t, ds.Add(&ScriptRecord{Name: ""}))
	assert.False(t, ds.Add(nil))

	assert.Equal(t, []string{"B", "A"}, ds.Names())
	rec, ok := ds.Get("B")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, rec.Calls)
	assert.Equal(t, 2, ds.Len())
}

func TestSnapshot_JSONKeepsOrder(t *testing.T) {
	ds := NewDataset()
	ds.Add(&ScriptRecord{Name: "Zeta", DA2Jobs: []string{"J1"}, Calls: []string{"Alpha"}})
	ds.Add(&ScriptRecord{Name: "Alpha"})

	data, err := json.Marshal(ds.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"Zeta":{"da2_jobs":["J1"],"ops_jobs":[],"calls":["Alpha"]},"Alpha":{"da2_jobs":[],"ops_jobs":[],"calls":[]}}`,
		string(data))
	assert.Less(t, strings.Index(string(data), "Zeta"), strings.Index(string(data), "Alpha"))

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"Zeta", "Alpha"}, back.Order)
	assert.Equal(t, []string{"Alpha"}, back.Scripts["Zeta"].Calls)
}

func TestSnapshot_UnmarshalRejectsArray(t *testing.T) {
	var snap Snapshot
	err := json.Unmarshal([]byte(`[]`), &snap)
	assert.Error(t, err)
}
