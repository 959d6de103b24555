package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
	"github.com/leapstack-labs/scriptdeps/internal/loader"
	"github.com/leapstack-labs/scriptdeps/internal/state"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/spf13/cobra"
)

// Export formats.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

// DefaultExportDB is where sqlite exports go when --out is not given.
const DefaultExportDB = ".scriptdeps/exports.db"

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Format string
	Out    string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the script dataset",
		Long: `Export the parsed dataset.

Formats:
  json    name -> {da2_jobs, ops_jobs, calls}, in dump order
  yaml    a dataset file that --dataset can load back
  sqlite  appends a snapshot to a SQLite database and lists its exports`,
		Example: `  # Snapshot for a renderer
  scriptdeps export -i prod.dat > scripts.json

  # Dataset fixture
  scriptdeps export --format yaml --out scripts.yaml

  # Keep history in SQLite
  scriptdeps export --format sqlite --out exports.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", FormatJSON, "Export format (json|yaml|sqlite)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (default: stdout, or "+DefaultExportDB+" for sqlite)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatJSON, FormatYAML, FormatSQLite}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	switch opts.Format {
	case FormatJSON, FormatYAML, FormatSQLite:
	default:
		return fmt.Errorf("invalid export format %q (must be json, yaml, or sqlite)", opts.Format)
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ds := cmdCtx.Engine.Dataset()

	if opts.Format == FormatSQLite {
		return exportSQLite(cmd, cmdCtx, opts.Out)
	}

	var buf bytes.Buffer
	if err := writeExport(&buf, ds, opts.Format); err != nil {
		return err
	}
	if opts.Out == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := writeFile(opts.Out, buf.Bytes()); err != nil {
		return err
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Exported %d scripts to %s", ds.Len(), opts.Out))
	return nil
}

// writeExport encodes ds in format.
func writeExport(w io.Writer, ds *core.Dataset, format string) error {
	if format == FormatYAML {
		return loader.WriteDatasetYAML(w, ds)
	}
	raw, err := json.Marshal(ds.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to indent snapshot: %w", err)
	}
	pretty.WriteByte('\n')
	_, err = w.Write(pretty.Bytes())
	return err
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func exportSQLite(cmd *cobra.Command, cmdCtx *CommandContext, out string) error {
	if out == "" {
		out = DefaultExportDB
	}
	if dir := filepath.Dir(out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	store := state.NewStore(cmdCtx.Logger)
	if err := store.Open(out); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(); err != nil {
		return err
	}

	report := cmdCtx.Engine.Report()
	exp, err := store.SaveExport(cmd.Context(), cmdCtx.Engine.Dataset(), report.Source, report.Path)
	if err != nil {
		return err
	}
	exports, err := store.ListExports(cmd.Context())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	summary := output.ExportSummary{
		ID:          exp.ID,
		Format:      FormatSQLite,
		Path:        out,
		ScriptCount: exp.ScriptCount,
		CallCount:   exp.CallCount,
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(struct {
			output.ExportSummary
			History []state.Export `json:"history"`
		}{summary, exports})
	}

	r.Success(fmt.Sprintf("Saved export %s (%d scripts, %d calls) to %s", exp.ID, exp.ScriptCount, exp.CallCount, out))
	r.Println()
	rows := make([][]string, 0, len(exports))
	for _, e := range exports {
		rows = append(rows, []string{
			e.ID,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Source,
			e.SourcePath,
			strconv.Itoa(e.ScriptCount),
			strconv.Itoa(e.CallCount),
		})
	}
	r.Table([]string{"ID", "Created", "Source", "Path", "Scripts", "Calls"}, rows)
	return nil
}
