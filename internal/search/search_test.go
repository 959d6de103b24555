package search

import (
	"testing"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *core.Dataset {
	ds := core.NewDataset()
	ds.Add(&core.ScriptRecord{Name: "LoadOrders", DA2Jobs: []string{"DA2_Nightly"}, OpsJobs: []string{"OPS_Orders"}})
	ds.Add(&core.ScriptRecord{Name: "LoadCustomers", DA2Jobs: []string{"DA2_Nightly", "DA2_Weekly"}})
	ds.Add(&core.ScriptRecord{Name: "PurgeLogs", OpsJobs: []string{"OPS_Cleanup"}})
	return ds
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in      string
		want    Field
		wantErr bool
	}{
		{"", FieldName, false},
		{"name", FieldName, false},
		{"DA2", FieldDA2, false},
		{" ops ", FieldOps, false},
		{"owner", "", true},
	}
	for _, tt := range tests {
		got, err := ParseField(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFind(t *testing.T) {
	ds := sampleDataset()

	tests := []struct {
		name  string
		query string
		field Field
		want  []string
	}{
		{"name substring any case", "load", FieldName, []string{"LoadOrders", "LoadCustomers"}},
		{"da2 job", "nightly", FieldDA2, []string{"LoadOrders", "LoadCustomers"}},
		{"da2 job single", "weekly", FieldDA2, []string{"LoadCustomers"}},
		{"ops job", "ops_", FieldOps, []string{"LoadOrders", "PurgeLogs"}},
		{"no match", "zzz", FieldName, nil},
		{"blank query", "  ", FieldName, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Find(ds, tt.query, tt.field))
		})
	}
}

func TestCompletions(t *testing.T) {
	ds := sampleDataset()

	assert.Equal(t, []string{"DA2_Nightly", "DA2_Weekly"}, Completions(ds, "", FieldDA2))
	assert.Equal(t, []string{"OPS_Cleanup"}, Completions(ds, "clean", FieldOps))
	assert.Equal(t, []string{"PurgeLogs"}, Completions(ds, "purge", FieldName))
}

func TestSuggest(t *testing.T) {
	ds := sampleDataset()

	got := Suggest(ds, "ldordr", 2)
	require.NotEmpty(t, got)
	assert.Equal(t, "LoadOrders", got[0])

	assert.Empty(t, Suggest(ds, "", 3))
	assert.Empty(t, Suggest(ds, "xyz", 3))
	assert.Empty(t, Suggest(nil, "load", 3))
}
