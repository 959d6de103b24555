package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
	"github.com/leapstack-labs/scriptdeps/internal/engine"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all scripts with their jobs and calls",
		Long: `List every script in the dump with its DA2 and OPS jobs and the scripts it calls.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List scripts from a dump
  scriptdeps list -i prod.dat

  # List scripts as JSON
  scriptdeps list --output json

  # Skip vendor scripts
  scriptdeps list --skip-compiler SYSTEM`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(eng, r)
	case output.ModeMarkdown:
		listMarkdown(eng, r)
	default:
		listText(eng, r)
	}
	return nil
}

func buildListOutput(eng *engine.Engine) output.ListOutput {
	ds := eng.Dataset()
	graph := eng.Graph()
	report := eng.Report()

	out := output.ListOutput{
		Source:  report.Source,
		Path:    report.Path,
		Scripts: make([]output.ScriptInfo, 0, ds.Len()),
		Summary: output.ListSummary{
			TotalScripts: graph.NodeCount(),
			TotalCalls:   graph.EdgeCount(),
			EntryPoints:  graph.GetEntryPoints(),
			Leaves:       graph.GetLeaves(),
			Unresolved:   graph.Unresolved(),
		},
	}
	out.Summary.HasCycle, out.Summary.Cycle = graph.HasCycle()

	for _, rec := range ds.Records() {
		out.Scripts = append(out.Scripts, output.ScriptInfo{
			Name:     rec.Name,
			DA2Jobs:  rec.DA2Jobs,
			OpsJobs:  rec.OpsJobs,
			Calls:    rec.Calls,
			CalledBy: graph.CalledBy(rec.Name),
		})
	}
	return out
}

// listText outputs scripts as a styled table.
func listText(eng *engine.Engine, r *output.Renderer) {
	list := buildListOutput(eng)

	r.Header(1, fmt.Sprintf("Scripts (%d total)", list.Summary.TotalScripts))
	if len(list.Scripts) == 0 {
		r.Muted("No scripts loaded.")
		return
	}

	rows := make([][]string, 0, len(list.Scripts))
	for _, s := range list.Scripts {
		rows = append(rows, []string{
			s.Name,
			output.FormatList(s.DA2Jobs),
			output.FormatList(s.OpsJobs),
			strconv.Itoa(len(s.Calls)),
			strconv.Itoa(len(s.CalledBy)),
		})
	}
	r.Table([]string{"Script", "DA2 Jobs", "OPS Jobs", "Calls", "Called By"}, rows)

	r.Println()
	r.Printf("%s %s\n", r.Styles().Bold.Render("Entry points:"), output.FormatList(list.Summary.EntryPoints))
	r.Printf("%s %s\n", r.Styles().Bold.Render("Leaves:"), output.FormatList(list.Summary.Leaves))
	if len(list.Summary.Unresolved) > 0 {
		r.Printf("%s %s\n", r.Styles().Warning.Render("Unresolved calls:"), output.FormatList(list.Summary.Unresolved))
	}
	if list.Summary.HasCycle {
		r.Printf("%s %s\n", r.Styles().Warning.Render("Cycle:"), strings.Join(list.Summary.Cycle, " -> "))
	}
}

// listMarkdown outputs scripts in markdown format.
func listMarkdown(eng *engine.Engine, r *output.Renderer) {
	list := buildListOutput(eng)

	r.Println(output.FormatHeader(1, fmt.Sprintf("Scripts (%d total)", list.Summary.TotalScripts)))
	r.Println("")

	for _, s := range list.Scripts {
		r.Println(output.FormatHeader(2, s.Name))
		r.Println(output.FormatKeyValue("DA2 Jobs", output.FormatList(s.DA2Jobs)))
		r.Println(output.FormatKeyValue("OPS Jobs", output.FormatList(s.OpsJobs)))
		if len(s.Calls) > 0 {
			r.Println(output.FormatKeyValue("Calls", strings.Join(s.Calls, ", ")))
		}
		if len(s.CalledBy) > 0 {
			r.Println(output.FormatKeyValue("Called By", strings.Join(s.CalledBy, ", ")))
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Scripts", strconv.Itoa(list.Summary.TotalScripts)))
	r.Println(output.FormatKeyValue("Total Calls", strconv.Itoa(list.Summary.TotalCalls)))
	r.Println(output.FormatKeyValue("Entry Points", output.FormatList(list.Summary.EntryPoints)))
	r.Println(output.FormatKeyValue("Leaves", output.FormatList(list.Summary.Leaves)))
	if len(list.Summary.Unresolved) > 0 {
		r.Println(output.FormatKeyValue("Unresolved", strings.Join(list.Summary.Unresolved, ", ")))
	}
	if list.Summary.HasCycle {
		r.Println(output.FormatKeyValue("Cycle", strings.Join(list.Summary.Cycle, " -> ")))
	}
}

// listJSON outputs scripts in JSON format.
func listJSON(eng *engine.Engine, r *output.Renderer) error {
	return r.JSON(buildListOutput(eng))
}
