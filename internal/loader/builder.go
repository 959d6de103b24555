// Package loader turns parsed dump blocks into the canonical script dataset.
package loader

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// executePattern finds the EXECUTE keyword as a whole word, any case.
var executePattern = regexp.MustCompile(`(?i)\bEXECUTE\b`)

// BuildRecord converts one block into a ScriptRecord.
// Calls keep their order of appearance and may repeat; Load deduplicates them.
func BuildRecord(block core.Block) *core.ScriptRecord {
	return &core.ScriptRecord{
		Name:    core.CanonicalName(block.Name),
		DA2Jobs: ParseJobs(block.Metadata.DA2),
		OpsJobs: ParseJobs(block.Metadata.Ops),
		Calls:   ExtractCalls(block.Content),
	}
}

// ParseJobs splits a DA2/OPS tag value on commas.
// An absent tag, N/A, or UNKNOWN yields an empty list.
func ParseJobs(tag core.Tag) []string {
	jobs := []string{}
	if !tag.Present {
		return jobs
	}
	value := strings.TrimSpace(tag.Value)
	if value == "" || strings.EqualFold(value, "N/A") || strings.EqualFold(value, "UNKNOWN") {
		return jobs
	}
	for _, job := range strings.Split(value, ",") {
		if job = strings.TrimSpace(job); job != "" {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// ExtractCalls returns the target of every EXECUTE statement in content.
// The target is the first token after the last EXECUTE on a line, with quotes
// removed and the name canonicalized.
func ExtractCalls(content string) []string {
	calls := []string{}
	for _, line := range strings.Split(content, "\n") {
		if call := callOnLine(line); call != "" {
			calls = append(calls, call)
		}
	}
	return calls
}

func callOnLine(line string) string {
	locs := executePattern.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return ""
	}
	fields := strings.Fields(line[locs[len(locs)-1][1]:])
	if len(fields) == 0 {
		return ""
	}
	target := strings.NewReplacer("'", "", `"`, "").Replace(fields[0])
	return core.CanonicalName(target)
}
