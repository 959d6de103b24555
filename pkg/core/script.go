package core

import "strings"

// UnknownValue is stored for a metadata tag that appears without a value.
const UnknownValue = "Unknown"

// ScriptRecord is one script extracted from a dump, keyed by its canonical name.
type ScriptRecord struct {
	// Name is the canonical script name (see CanonicalName)
	Name string `json:"name" yaml:"name"`
	// DA2Jobs are the DA2 scheduled jobs that run this script
	DA2Jobs []string `json:"da2_jobs" yaml:"da2_jobs"`
	// OpsJobs are the OPS scheduled jobs that run this script
	OpsJobs []string `json:"ops_jobs" yaml:"ops_jobs"`
	// Calls are the scripts this script invokes via EXECUTE, in order of appearance
	Calls []string `json:"calls" yaml:"calls"`
	// Placeholder marks a record synthesized for a referenced but undefined name
	Placeholder bool `json:"-" yaml:"-"`
}

// NewPlaceholder returns a placeholder record for name.
func NewPlaceholder(name string) *ScriptRecord {
	return &ScriptRecord{
		Name:        name,
		DA2Jobs:     []string{},
		OpsJobs:     []string{},
		Calls:       []string{},
		Placeholder: true,
	}
}

// Clone returns a deep copy of the record.
func (r *ScriptRecord) Clone() *ScriptRecord {
	if r == nil {
		return nil
	}
	return &ScriptRecord{
		Name:        r.Name,
		DA2Jobs:     append([]string{}, r.DA2Jobs...),
		OpsJobs:     append([]string{}, r.OpsJobs...),
		Calls:       append([]string{}, r.Calls...),
		Placeholder: r.Placeholder,
	}
}

// CanonicalName truncates name at the first ':' and trims surrounding whitespace,
// so "ScriptA:dba" and " ScriptA " both become "ScriptA".
func CanonicalName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// Tag is a metadata tag value that distinguishes "never seen" from "seen".
type Tag struct {
	Value   string
	Present bool
}

// Set records v as the tag value. An empty v is stored as UnknownValue.
func (t *Tag) Set(v string) {
	if v == "" {
		v = UnknownValue
	}
	t.Value = v
	t.Present = true
}

// String returns the value, or "" when the tag was never set.
func (t Tag) String() string {
	if !t.Present {
		return ""
	}
	return t.Value
}

// Metadata holds the tag values in effect when a block was closed.
type Metadata struct {
	CompiledBy Tag
	Source     Tag
	DA2        Tag
	Ops        Tag
	LastRunBy  Tag
}

// Block is one CREATE/DROP PROGRAM ... END GO segment of a dump.
type Block struct {
	// Name is the raw block name (third token of the start line)
	Name string
	// Content is the buffered block text, start and end lines included
	Content string
	// Metadata is a snapshot of the tags seen since the previous block closed
	Metadata Metadata
	// StartLine is the 1-based line number of the start marker
	StartLine int
}
