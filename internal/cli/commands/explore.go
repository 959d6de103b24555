package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
	"github.com/leapstack-labs/scriptdeps/internal/engine"
	"github.com/leapstack-labs/scriptdeps/internal/search"
	"github.com/leapstack-labs/scriptdeps/internal/selection"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/spf13/cobra"
)

const explorePrompt = "scriptdeps> "

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactively pin scripts and walk their relations",
		Long: `Start an interactive explorer over the loaded dump.

Pinned scripts form the visible graph: each pin adds the script, what it calls
and what calls it, directly and two calls away. Every change is printed as
node and edge updates. Type .help inside the explorer for its commands.`,
		Example: `  scriptdeps explore -i prod.dat`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExplore(cmd)
		},
	}

	return cmd
}

func runExplore(cmd *cobra.Command) error {
	cmdCtx := loadTolerant(cmd)
	ex := newExplorer(cmdCtx.Engine, cmdCtx.Renderer)

	historyFile := cmdCtx.Cfg.Repl.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0750); err != nil {
			cmdCtx.Logger.Debug("history disabled", "error", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          explorePrompt,
		HistoryFile:     historyFile,
		AutoComplete:    ex.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize explorer: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("scriptdeps explorer (%d scripts)\n", cmdCtx.Engine.Dataset().Len())
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if quit := ex.exec(cmd.Context(), line); quit {
			break
		}
	}
	return nil
}

// explorer holds the REPL state: the engine and the current selection.
type explorer struct {
	eng *engine.Engine
	sel *selection.Set
	r   *output.Renderer
}

func newExplorer(eng *engine.Engine, r *output.Renderer) *explorer {
	ex := &explorer{eng: eng, r: r}
	ex.sel = selection.New(eng.Graph(), core.EventSinkFunc(ex.printEvents))
	return ex
}

// printEvents renders selection deltas as text lines.
func (ex *explorer) printEvents(events []core.Event) {
	styles := ex.r.Styles()
	for _, ev := range events {
		switch ev.Type {
		case core.EventAddNode:
			ex.r.Println(styles.Success.Render("+ node " + ev.Node))
		case core.EventRemoveNode:
			ex.r.Println(styles.Muted.Render("- node " + ev.Node))
		case core.EventAddEdge:
			style := styles.Direct
			if ev.Class == core.EdgeIndirect {
				style = styles.Indirect
			}
			ex.r.Println(style.Render(fmt.Sprintf("+ edge %s -> %s (%s)", ev.From, ev.To, ev.Class)))
		case core.EventRemoveEdge:
			ex.r.Println(styles.Muted.Render(fmt.Sprintf("- edge %s -> %s", ev.From, ev.To)))
		}
	}
}

// exec runs one input line. It returns true when the session should end.
func (ex *explorer) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case ".quit", ".exit":
		return true
	case ".help", "help":
		printExploreHelp(ex.r.Writer())
	case "add":
		if len(args) == 0 {
			ex.r.Error("usage: add <script>...")
			return false
		}
		for _, name := range args {
			ex.add(name)
		}
	case "find":
		ex.find(args)
	case "remove", "rm":
		if len(args) != 1 {
			ex.r.Error("usage: remove <script>")
			return false
		}
		name := core.CanonicalName(args[0])
		outcome, _ := ex.sel.Remove(name)
		ex.r.Println(outcome.Message(name))
	case "clear":
		outcome, _ := ex.sel.Clear()
		ex.r.Println(outcome.Message(""))
	case "roots":
		roots := ex.sel.Roots()
		if len(roots) == 0 {
			ex.r.Muted("No scripts pinned.")
			return false
		}
		ex.r.Println(strings.Join(roots, "\n"))
	case "show":
		ex.show(args)
	case "graph":
		ex.graph()
	case "reload":
		ex.reload(ctx)
	default:
		ex.r.Error(fmt.Sprintf("unknown command %q (type .help)", fields[0]))
	}
	return false
}

func (ex *explorer) add(raw string) {
	name := core.CanonicalName(raw)
	outcome, _ := ex.sel.Add(name)
	ex.r.Println(outcome.Message(name))
	if outcome == selection.OutcomeUnknown {
		if s := search.Suggest(ex.eng.Dataset(), name, suggestLimit); len(s) > 0 {
			ex.r.Muted("Did you mean: " + strings.Join(s, ", ") + "?")
		}
	}
}

func (ex *explorer) find(args []string) {
	if len(args) == 0 {
		ex.r.Error("usage: find <text> [name|da2|ops]")
		return
	}
	field := search.FieldName
	if len(args) > 1 {
		f, err := search.ParseField(args[1])
		if err != nil {
			ex.r.Error(err.Error())
			return
		}
		field = f
	}

	matches := search.Find(ex.eng.Dataset(), args[0], field)
	if len(matches) == 0 {
		ex.r.Println(search.NoMatchesNotice)
		return
	}
	for _, name := range matches {
		outcome, _ := ex.sel.Add(name)
		ex.r.Println(outcome.Message(name))
	}
}

func (ex *explorer) show(args []string) {
	if len(args) > 0 {
		name := core.CanonicalName(args[0])
		rep, ok := selection.Describe(ex.eng.Graph(), name)
		if !ok {
			ex.r.Error(unknownScriptError(ex.eng.Dataset(), name).Error())
			return
		}
		writeReportText(ex.r, rep)
		return
	}

	reports := ex.sel.Report()
	if len(reports) == 0 {
		ex.r.Muted("No scripts pinned.")
		return
	}
	for i, rep := range reports {
		if i > 0 {
			ex.r.Println()
		}
		writeReportText(ex.r, rep)
	}
}

func (ex *explorer) graph() {
	state := ex.sel.State()
	if len(state.Nodes) == 0 {
		ex.r.Muted("Nothing visible.")
		return
	}
	styles := ex.r.Styles()
	ex.r.Printf("%s %s\n", styles.Bold.Render("Nodes:"), strings.Join(state.Nodes, ", "))
	ex.r.Println(styles.Bold.Render("Edges:"))
	for _, e := range state.Edges {
		style := styles.Direct
		if e.Class == core.EdgeIndirect {
			style = styles.Indirect
		}
		ex.r.Println(style.Render(fmt.Sprintf("  %s -> %s (%s)", e.From, e.To, e.Class)))
	}
}

// reload re-reads the source and re-pins the roots that still exist.
func (ex *explorer) reload(ctx context.Context) {
	report, err := ex.eng.Load(ctx)
	if err != nil {
		ex.r.Error(err.Error())
	}
	roots := ex.sel.Roots()
	sel := selection.New(ex.eng.Graph(), nil)
	for _, root := range roots {
		sel.Add(root)
	}
	sel.SetSink(core.EventSinkFunc(ex.printEvents))
	ex.sel = sel

	if report != nil {
		ex.r.Printf("Reloaded %d scripts; %d of %d pins kept.\n", report.Scripts, len(sel.Roots()), len(roots))
	}
}

// completer offers commands, script names and pinned roots.
func (ex *explorer) completer() *readline.PrefixCompleter {
	names := func(string) []string {
		return search.Completions(ex.eng.Dataset(), "", search.FieldName)
	}
	roots := func(string) []string {
		return ex.sel.Roots()
	}
	fields := make([]readline.PrefixCompleterInterface, 0, len(search.Fields))
	for _, f := range search.Fields {
		fields = append(fields, readline.PcItem(string(f)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("add", readline.PcItemDynamic(names)),
		readline.PcItem("find", readline.PcItemDynamic(names, fields...)),
		readline.PcItem("remove", readline.PcItemDynamic(roots)),
		readline.PcItem("show", readline.PcItemDynamic(names)),
		readline.PcItem("clear"),
		readline.PcItem("roots"),
		readline.PcItem("graph"),
		readline.PcItem("reload"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func printExploreHelp(w io.Writer) {
	help := `Commands:
  add <script>...             Pin scripts
  find <text> [name|da2|ops]  Pin every matching script
  remove <script>             Unpin a script
  clear                       Unpin everything
  roots                       List pinned scripts
  show [script]               Relations of a script, or of every pinned script
  graph                       Visible nodes and edges
  reload                      Re-read the dump, keeping pins
  .help                       Show this help
  .quit                       Exit
`
	_, _ = fmt.Fprint(w, help)
}
