// Package commands implements the scriptdeps subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/scriptdeps/internal/cli/config"
	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
	"github.com/leapstack-labs/scriptdeps/internal/engine"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
	Report   *engine.LoadReport
}

// NewCommandContext creates a CommandContext and loads the configured scripts.
// A load failure is returned as an error.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cmdCtx.Engine = createEngine(cmd, cmdCtx.Cfg, cmdCtx.Logger)

	report, err := cmdCtx.Engine.Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts: %w", err)
	}
	cmdCtx.Report = report
	cmdCtx.warnIssues()
	return cmdCtx, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't read a dump.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// loadTolerant loads scripts like NewCommandContext but keeps going with an
// empty dataset when the load fails. Interactive commands use it.
func loadTolerant(cmd *cobra.Command) *CommandContext {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cmdCtx.Engine = createEngine(cmd, cmdCtx.Cfg, cmdCtx.Logger)

	report, err := cmdCtx.Engine.Load(cmd.Context())
	if err != nil {
		cmdCtx.Renderer.Error(err.Error())
	}
	if report != nil {
		cmdCtx.Report = report
		cmdCtx.warnIssues()
	}
	return cmdCtx
}

// warnIssues prints parser findings to stderr.
func (c *CommandContext) warnIssues() {
	if c.Report == nil {
		return
	}
	for _, issue := range c.Report.Issues {
		c.Renderer.Warning(issue.String())
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Input:        os.Getenv("SCRIPTDEPS_INPUT"),
		Dataset:      os.Getenv("SCRIPTDEPS_DATASET"),
		OutputFormat: getEnvOrDefault("SCRIPTDEPS_OUTPUT", config.DefaultOutput),
		Verbose:      os.Getenv("SCRIPTDEPS_VERBOSE") == "true",
		Serve: config.ServeConfig{
			Port:  config.DefaultPort,
			Watch: config.DefaultWatch,
		},
		Repl: config.ReplConfig{
			HistoryFile: config.DefaultHistoryFile,
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *engine.Engine {
	return engine.New(engine.Config{
		Input:       cfg.Input,
		DatasetPath: cfg.Dataset,
		Provider:    inputProvider(cmd),
		Filter:      cfg.Filter.Parser(),
		Logger:      logger,
	})
}
