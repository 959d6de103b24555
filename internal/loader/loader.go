package loader

import (
	"log/slog"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// Stats summarizes what Load kept and dropped.
type Stats struct {
	Blocks     int `json:"blocks"`
	Records    int `json:"records"`
	EmptyNames int `json:"empty_names"`
	Duplicates int `json:"duplicates"`
}

// Load builds a record for every block and keeps the first record per name.
// Records with an empty name are dropped. Calls and jobs are deduplicated
// preserving first occurrence.
func Load(blocks []core.Block, logger *slog.Logger) (*core.Dataset, Stats) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ds := core.NewDataset()
	stats := Stats{Blocks: len(blocks)}
	for _, block := range blocks {
		rec := BuildRecord(block)
		if rec.Name == "" {
			stats.EmptyNames++
			continue
		}
		if ds.Has(rec.Name) {
			stats.Duplicates++
			logger.Debug("dropped duplicate script", slog.String("name", rec.Name), slog.Int("line", block.StartLine))
			continue
		}
		ds.Add(Normalize(rec))
	}
	stats.Records = ds.Len()
	return ds, stats
}

// Normalize removes duplicate calls and jobs from rec in place and returns it.
func Normalize(rec *core.ScriptRecord) *core.ScriptRecord {
	rec.Calls = dedupe(rec.Calls)
	rec.DA2Jobs = dedupe(rec.DA2Jobs)
	rec.OpsJobs = dedupe(rec.OpsJobs)
	return rec
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
