// Package search finds scripts by name or scheduled job.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Field selects what a query is matched against.
type Field string

// Searchable fields.
const (
	FieldName Field = "name"
	FieldDA2  Field = "da2"
	FieldOps  Field = "ops"
)

// Fields lists the valid fields.
var Fields = []Field{FieldName, FieldDA2, FieldOps}

// ParseField parses a field name. Empty selects FieldName.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case "", FieldName:
		return FieldName, nil
	case FieldDA2:
		return FieldDA2, nil
	case FieldOps:
		return FieldOps, nil
	default:
		return "", fmt.Errorf("invalid search field %q (must be name, da2, or ops)", s)
	}
}

// NoMatchesNotice is shown when a search finds nothing.
const NoMatchesNotice = "No matching scripts found."

// values returns the strings of rec that field matches against.
func values(rec *core.ScriptRecord, field Field) []string {
	switch field {
	case FieldDA2:
		return rec.DA2Jobs
	case FieldOps:
		return rec.OpsJobs
	default:
		return []string{rec.Name}
	}
}

// Find returns the scripts with a field value containing query,
// case-insensitively, in dataset order. A blank query matches nothing.
func Find(ds *core.Dataset, query string, field Field) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || ds == nil {
		return nil
	}
	var out []string
	for _, rec := range ds.Records() {
		for _, v := range values(rec, field) {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, rec.Name)
				break
			}
		}
	}
	return out
}

// Completions returns the distinct field values containing prefix, in
// dataset order. A blank prefix returns every value.
func Completions(ds *core.Dataset, prefix string, field Field) []string {
	if ds == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(prefix))
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range ds.Records() {
		for _, v := range values(rec, field) {
			if _, dup := seen[v]; dup {
				continue
			}
			if strings.Contains(strings.ToLower(v), q) {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out
}

// Suggest returns up to limit script names that fuzzily match query,
// closest first. It backs "did you mean" hints.
func Suggest(ds *core.Dataset, query string, limit int) []string {
	if ds == nil || strings.TrimSpace(query) == "" || limit <= 0 {
		return nil
	}
	ranks := fuzzy.RankFindFold(strings.TrimSpace(query), ds.Names())
	sort.Stable(ranks)
	out := make([]string, 0, limit)
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
