package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
	"github.com/leapstack-labs/scriptdeps/internal/search"
	"github.com/leapstack-labs/scriptdeps/internal/selection"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// suggestLimit caps "did you mean" candidates.
const suggestLimit = 3

var titleCaser = cases.Title(language.English)

// relationSection is one of the four relation sets of a report.
type relationSection struct {
	title   string
	scripts []selection.ScriptInfo
}

func sectionsOf(rep selection.RootReport) []relationSection {
	return []relationSection{
		{title: titleCaser.String("direct calls"), scripts: rep.DirectCalls},
		{title: titleCaser.String("called by"), scripts: rep.CalledBy},
		{title: titleCaser.String("indirect calls"), scripts: rep.IndirectCalls},
		{title: titleCaser.String("indirect called by"), scripts: rep.IndirectCalledBy},
	}
}

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <script>",
		Short: "Show what a script calls and what calls it",
		Long: `Show the direct and indirect relations of a script.

Direct relations are one EXECUTE away. Indirect relations are exactly two
calls away and never repeat a direct relation. Every related script is listed
with its DA2 and OPS jobs.`,
		Example: `  # Relations of LoadOrders
  scriptdeps deps LoadOrders -i prod.dat

  # As JSON
  scriptdeps deps LoadOrders -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0])
		},
	}

	return cmd
}

func runDeps(cmd *cobra.Command, name string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	name = core.CanonicalName(name)
	rep, ok := selection.Describe(cmdCtx.Engine.Graph(), name)
	if !ok {
		return unknownScriptError(cmdCtx.Engine.Dataset(), name)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rep)
	case output.ModeMarkdown:
		writeReportMarkdown(r, rep)
	default:
		writeReportText(r, rep)
	}
	return nil
}

// unknownScriptError reports an unknown name with the closest known names.
func unknownScriptError(ds *core.Dataset, name string) error {
	suggestions := search.Suggest(ds, name, suggestLimit)
	if len(suggestions) == 0 {
		return fmt.Errorf("unknown script %s", name)
	}
	return fmt.Errorf("unknown script %s (did you mean: %s?)", name, strings.Join(suggestions, ", "))
}

func writeReportText(r *output.Renderer, rep selection.RootReport) {
	styles := r.Styles()
	r.Println(styles.Root.Render(rep.Name))
	r.Printf("  %s %s\n", styles.Muted.Render("DA2:"), output.FormatList(rep.DA2Jobs))
	r.Printf("  %s %s\n", styles.Muted.Render("OPS:"), output.FormatList(rep.OpsJobs))

	for i, sec := range sectionsOf(rep) {
		style := styles.Direct
		if i >= 2 {
			style = styles.Indirect
		}
		r.Println()
		r.Println(style.Render(fmt.Sprintf("%s (%d)", sec.title, len(sec.scripts))))
		if len(sec.scripts) == 0 {
			r.Muted("  none")
			continue
		}
		rows := make([][]string, 0, len(sec.scripts))
		for _, s := range sec.scripts {
			rows = append(rows, []string{s.Name, output.FormatList(s.DA2Jobs), output.FormatList(s.OpsJobs)})
		}
		r.Table([]string{"Script", "DA2 Jobs", "OPS Jobs"}, rows)
	}
}

func writeReportMarkdown(r *output.Renderer, rep selection.RootReport) {
	r.Println(output.FormatHeader(1, rep.Name))
	r.Println("")
	r.Println(output.FormatKeyValue("DA2 Jobs", output.FormatList(rep.DA2Jobs)))
	r.Println(output.FormatKeyValue("OPS Jobs", output.FormatList(rep.OpsJobs)))
	r.Println("")

	for _, sec := range sectionsOf(rep) {
		r.Println(output.FormatHeader(2, sec.title))
		r.Println("")
		if len(sec.scripts) == 0 {
			r.Println("_none_")
			r.Println("")
			continue
		}
		for _, s := range sec.scripts {
			r.Printf("- **%s** (DA2: %s; OPS: %s)\n", s.Name, output.FormatList(s.DA2Jobs), output.FormatList(s.OpsJobs))
		}
		r.Println("")
	}
}
