package output

// ScriptInfo is one script in list output.
type ScriptInfo struct {
	Name     string   `json:"name"`
	DA2Jobs  []string `json:"da2_jobs"`
	OpsJobs  []string `json:"ops_jobs"`
	Calls    []string `json:"calls"`
	CalledBy []string `json:"called_by"`
}

// ListSummary summarizes the loaded dataset.
type ListSummary struct {
	TotalScripts int      `json:"total_scripts"`
	TotalCalls   int      `json:"total_calls"`
	EntryPoints  []string `json:"entry_points"`
	Leaves       []string `json:"leaves"`
	Unresolved   []string `json:"unresolved"`
	HasCycle     bool     `json:"has_cycle"`
	Cycle        []string `json:"cycle,omitempty"`
}

// ListOutput is the JSON output of the list command.
type ListOutput struct {
	Source  string       `json:"source"`
	Path    string       `json:"path,omitempty"`
	Scripts []ScriptInfo `json:"scripts"`
	Summary ListSummary  `json:"summary"`
}

// SearchOutput is the JSON output of the search command.
type SearchOutput struct {
	Query       string   `json:"query"`
	Field       string   `json:"field"`
	Matches     []string `json:"matches"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ExportSummary describes a written export.
type ExportSummary struct {
	ID          string `json:"id,omitempty"`
	Format      string `json:"format"`
	Path        string `json:"path,omitempty"`
	ScriptCount int    `json:"script_count"`
	CallCount   int    `json:"call_count"`
}
