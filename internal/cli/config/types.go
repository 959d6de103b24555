// Package config provides configuration management for the scriptdeps CLI.
//
// Values are layered with koanf: defaults, then scriptdeps.yaml, then
// SCRIPTDEPS_* environment variables, then explicitly set flags.
package config

import "github.com/leapstack-labs/scriptdeps/internal/parser"

// FilterConfig holds the skip filter applied while parsing a dump.
type FilterConfig struct {
	SkipCompiler string `koanf:"skip_compiler"`
	SkipSource   string `koanf:"skip_source"`
}

// Parser returns the parser filter for these settings.
func (f FilterConfig) Parser() parser.Filter {
	return parser.Filter{
		CompilerPrefix:  f.SkipCompiler,
		SourceSubstring: f.SkipSource,
	}
}

// ServeConfig holds configuration for the HTTP API server.
type ServeConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// ReplConfig holds configuration for the interactive explorer.
type ReplConfig struct {
	HistoryFile string `koanf:"history_file"`
}

// Config holds all CLI configuration options.
type Config struct {
	Input        string       `koanf:"input"`
	Dataset      string       `koanf:"dataset"`
	Filter       FilterConfig `koanf:"filter"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	Serve        ServeConfig  `koanf:"serve"`
	Repl         ReplConfig   `koanf:"repl"`

	// ProjectRoot is the directory holding the config file, or the CWD
	ProjectRoot string `koanf:"-"`
}

// Default configuration values
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort        = 8787
	DefaultWatch       = true
	DefaultHistoryFile = ".scriptdeps/history"
)
