// Package engine loads a script dataset from its configured source and owns
// the call graph built over it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/scriptdeps/internal/dag"
	"github.com/leapstack-labs/scriptdeps/internal/loader"
	"github.com/leapstack-labs/scriptdeps/internal/parser"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// ErrNoInput is reported when no source was configured or selected.
var ErrNoInput = errors.New("no input selected")

// Source kinds.
const (
	SourceDump     = "dump"
	SourceDataset  = "dataset"
	SourceInjected = "injected"
	SourceNone     = "none"
)

// Config holds engine configuration.
type Config struct {
	// Input is the path to a program dump
	Input string
	// DatasetPath is the path to a YAML dataset file, used instead of Input
	DatasetPath string
	// Dataset is used as-is when set; it wins over every path
	Dataset *core.Dataset
	// Provider supplies the dump path when neither Input nor DatasetPath is set
	Provider core.PathProvider
	// Filter drops blocks from the dump at emission time
	Filter parser.Filter
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// LoadReport describes the last load.
type LoadReport struct {
	Source    string         `json:"source"`
	Path      string         `json:"path,omitempty"`
	Lines     int            `json:"lines"`
	Skipped   int            `json:"skipped"`
	Discarded int            `json:"discarded"`
	Loader    loader.Stats   `json:"loader"`
	Issues    []parser.Issue `json:"issues,omitempty"`
	Scripts   int            `json:"scripts"`
	Edges     int            `json:"edges"`
	// Placeholders counts names looked up since the load that have no record.
	Placeholders int `json:"placeholders"`
}

// Engine holds the current dataset and graph. Reload swaps both atomically.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	path    string
	dataset *core.Dataset
	graph   *dag.Graph
	report  LoadReport
}

// New creates an engine with an empty dataset. Call Load to populate it.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	empty := core.NewDataset()
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		dataset: empty,
		graph:   dag.New(empty),
		report:  LoadReport{Source: SourceNone},
	}
}

// Load resolves the source and builds the dataset and graph.
// On a read failure the engine keeps an empty dataset and the error is
// returned alongside the report so the caller can show it and carry on.
func (e *Engine) Load(ctx context.Context) (*LoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, report, err := e.load(ctx)
	if ds == nil {
		ds = core.NewDataset()
	}
	graph := dag.New(ds)
	report.Scripts = graph.NodeCount()
	report.Edges = graph.EdgeCount()

	e.mu.Lock()
	e.dataset = ds
	e.graph = graph
	e.report = report
	if report.Path != "" {
		e.path = report.Path
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("load failed; continuing with empty dataset",
			slog.String("source", report.Source),
			slog.String("path", report.Path),
			slog.String("error", err.Error()))
		return &report, err
	}
	if hasCycle, path := graph.HasCycle(); hasCycle {
		e.logger.Info("call cycle detected", slog.Any("cycle", path))
	}
	e.logger.Debug("loaded dataset",
		slog.String("source", report.Source),
		slog.String("path", report.Path),
		slog.Int("scripts", report.Scripts),
		slog.Int("edges", report.Edges),
		slog.Int("issues", len(report.Issues)))
	return &report, nil
}

func (e *Engine) load(ctx context.Context) (*core.Dataset, LoadReport, error) {
	switch {
	case e.cfg.Dataset != nil:
		return e.cfg.Dataset, LoadReport{Source: SourceInjected}, nil
	case e.cfg.DatasetPath != "":
		report := LoadReport{Source: SourceDataset, Path: e.cfg.DatasetPath}
		ds, err := loader.LoadDatasetFile(e.cfg.DatasetPath)
		if err != nil {
			return nil, report, fmt.Errorf("load dataset: %w", err)
		}
		report.Loader = loader.Stats{Records: ds.Len()}
		return ds, report, nil
	}

	path, err := e.resolveInput(ctx)
	if err != nil {
		return nil, LoadReport{Source: SourceNone}, err
	}
	return e.parseDump(path)
}

// resolveInput returns the configured dump path, the last loaded path, or
// asks the provider.
func (e *Engine) resolveInput(ctx context.Context) (string, error) {
	if e.cfg.Input != "" {
		return e.cfg.Input, nil
	}
	e.mu.RLock()
	last := e.path
	e.mu.RUnlock()
	if last != "" {
		return last, nil
	}
	if e.cfg.Provider == nil {
		return "", ErrNoInput
	}
	path, err := e.cfg.Provider.Path(ctx)
	if err != nil {
		return "", fmt.Errorf("select input: %w", err)
	}
	if path == "" {
		return "", ErrNoInput
	}
	return path, nil
}

func (e *Engine) parseDump(path string) (*core.Dataset, LoadReport, error) {
	report := LoadReport{Source: SourceDump, Path: path}

	p := parser.New(parser.WithFilter(e.cfg.Filter), parser.WithLogger(e.logger))
	res, err := p.ParseFile(path)
	if err != nil {
		return nil, report, err
	}
	for _, issue := range res.Issues {
		e.logger.Debug("parse issue", slog.Int("line", issue.Line), slog.String("message", issue.Message))
	}

	ds, stats := loader.Load(res.Blocks, e.logger)
	report.Lines = res.Lines
	report.Skipped = res.Skipped
	report.Discarded = res.Discarded
	report.Issues = res.Issues
	report.Loader = stats
	return ds, report, nil
}

// Dataset returns the current dataset.
func (e *Engine) Dataset() *core.Dataset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dataset
}

// Graph returns the current call graph.
func (e *Engine) Graph() *dag.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// Report returns the report of the last load with the current placeholder count.
func (e *Engine) Report() LoadReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	report := e.report
	report.Placeholders = e.graph.PlaceholderCount()
	return report
}

// WatchPath returns the file a watcher should follow, or "" for injected data.
func (e *Engine) WatchPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.report.Source == SourceInjected {
		return ""
	}
	return e.report.Path
}
