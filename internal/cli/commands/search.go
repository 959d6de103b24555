package commands

import (
	"strings"

	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
	"github.com/leapstack-labs/scriptdeps/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find scripts by name or job",
		Long: `Find scripts whose name, DA2 job or OPS job contains the given text.
Matching is case-insensitive and results keep dump order.`,
		Example: `  # Scripts with "order" in the name
  scriptdeps search order

  # Scripts run by a DA2 job
  scriptdeps search nightly --by da2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], by)
		},
	}

	cmd.Flags().StringVar(&by, "by", string(search.FieldName), "Field to search (name|da2|ops)")
	_ = cmd.RegisterFlagCompletionFunc("by", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		fields := make([]string, 0, len(search.Fields))
		for _, f := range search.Fields {
			fields = append(fields, string(f))
		}
		return fields, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runSearch(cmd *cobra.Command, query, by string) error {
	field, err := search.ParseField(by)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer
	ds := cmdCtx.Engine.Dataset()

	result := output.SearchOutput{
		Query:   query,
		Field:   string(field),
		Matches: search.Find(ds, query, field),
	}
	if len(result.Matches) == 0 && field == search.FieldName {
		result.Suggestions = search.Suggest(ds, query, suggestLimit)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if result.Matches == nil {
			result.Matches = []string{}
		}
		return r.JSON(result)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Search: "+query))
		r.Println("")
	default:
		r.Header(1, "Search: "+query)
	}

	if len(result.Matches) == 0 {
		r.Println(search.NoMatchesNotice)
		if len(result.Suggestions) > 0 {
			r.Muted("Did you mean: " + strings.Join(result.Suggestions, ", ") + "?")
		}
		return nil
	}

	rows := make([][]string, 0, len(result.Matches))
	for _, name := range result.Matches {
		rec, _ := ds.Get(name)
		rows = append(rows, []string{name, output.FormatList(rec.DA2Jobs), output.FormatList(rec.OpsJobs)})
	}
	r.Table([]string{"Script", "DA2 Jobs", "OPS Jobs"}, rows)
	return nil
}
