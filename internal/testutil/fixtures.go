package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// NewDataset builds a dataset from name -> calls pairs, keeping the order given.
func NewDataset(t testing.TB, calls ...[]string) *core.Dataset {
	t.Helper()
	ds := core.NewDataset()
	for _, row := range calls {
		if len(row) == 0 {
			t.Fatal("testutil.NewDataset: empty row")
		}
		rec := &core.ScriptRecord{
			Name:    row[0],
			DA2Jobs: []string{},
			OpsJobs: []string{},
			Calls:   append([]string{}, row[1:]...),
		}
		if !ds.Add(rec) {
			t.Fatalf("testutil.NewDataset: duplicate script %q", row[0])
		}
	}
	return ds
}

// WriteDump writes lines as a dump file in a temp dir and returns its path.
func WriteDump(t testing.TB, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.dat")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}
