package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/scriptdeps/internal/cli"
	"github.com/leapstack-labs/scriptdeps/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// configKey documents one koanf key. Flag is empty for file-only keys.
type configKey struct {
	Key   string
	Flag  string
	Usage string
}

var configKeys = []configKey{
	{"input", "--input", "Program dump to load"},
	{"dataset", "--dataset", "Saved YAML dataset to load instead of a dump"},
	{"output", "--output", "Output mode: " + strings.Join(config.OutputModes, ", ")},
	{"verbose", "--verbose", "Debug logging on stderr"},
	{"filter.skip_compiler", "--skip-compiler", "Drop blocks whose COMPILED_BY starts with this prefix"},
	{"filter.skip_source", "--skip-source", "Drop blocks whose SOURCE contains this text"},
	{"serve.port", "--port", "HTTP port for serve"},
	{"serve.watch", "--watch", "Reload on dump changes while serving"},
	{"repl.history_file", "", "History file for explore"},
}

// envName maps a koanf key to its environment variable.
func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// generateCLIDocs writes index.md and one page per visible command to outDir.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": indexPage(root)}
	for _, cmd := range visibleCommands(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	for name, data := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.IsAvailableCommand() {
			out = append(out, cmd)
		}
	}
	return out
}

func indexPage(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for "+root.Name())
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Long)
	w.CodeBlock("bash", root.Name()+" [global flags] <command>")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(root) {
		link := fmt.Sprintf("[%s](%s.md)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Flags")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings come from, lowest to highest precedence: built-in defaults, "+
		"the nearest %s (searched upward from the working directory, or --config), "+
		"%s* environment variables, then flags given on the command line.",
		InlineCode("scriptdeps.yaml"), InlineCode(config.EnvPrefix)))
	rows = rows[:0]
	for _, ck := range configKeys {
		flag := ""
		if ck.Flag != "" {
			flag = InlineCode(ck.Flag)
		}
		rows = append(rows, []string{InlineCode(ck.Key), InlineCode(envName(ck.Key)), flag, ck.Usage})
	}
	w.Table([]string{"Key", "Environment", "Flag", "Description"}, rows)

	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Header(2, "Aliases")
		w.BulletList(aliases)
	}
	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Flags")
		w.Table(flagHeaders, flagRows(cmd.LocalNonPersistentFlags()))
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}
	return w.Bytes()
}

var flagHeaders = []string{"Flag", "Default", "Description"}

func flagRows(fs *pflag.FlagSet) [][]string {
	var rows [][]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := f.DefValue
		if def != "" && f.Value.Type() == "string" {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode(name), def, cleanDescription(f.Usage)})
	})
	return rows
}

// cleanExample strips the indentation shared by all non-blank lines.
func cleanExample(example string) string {
	lines := strings.Split(strings.Trim(example, "\n"), "\n")
	indent := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first || len(lead) < len(indent) {
			indent, first = lead, false
		}
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
