// Package parser splits a database program dump into blocks.
// A block runs from a CREATE PROGRAM or DROP PROGRAM line to the next END GO
// line. Metadata tags (<<COMPILED_BY: ...>> and friends) seen since the last
// emitted block are attached to the block when it closes.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
)

// maxLineSize bounds a single dump line. Real dumps carry long inline strings.
const maxLineSize = 16 * 1024 * 1024

const endMarker = "END GO"

var startMarkers = []string{"CREATE PROGRAM", "DROP PROGRAM"}

// tagSpec binds a <<TAG: ...>> marker to its Metadata field.
type tagSpec struct {
	marker string
	field  func(*core.Metadata) *core.Tag
}

var tagSpecs = []tagSpec{
	{"<<COMPILED_BY:", func(m *core.Metadata) *core.Tag { return &m.CompiledBy }},
	{"<<SOURCE:", func(m *core.Metadata) *core.Tag { return &m.Source }},
	{"<<DA2:", func(m *core.Metadata) *core.Tag { return &m.DA2 }},
	{"<<OPS:", func(m *core.Metadata) *core.Tag { return &m.Ops }},
	{"<<LAST_RUN_BY:", func(m *core.Metadata) *core.Tag { return &m.LastRunBy }},
}

// Filter drops blocks at emission time. Matching is case-insensitive.
// Empty fields never match.
type Filter struct {
	// CompilerPrefix skips blocks whose COMPILED_BY starts with it
	CompilerPrefix string `json:"skip_compiler" yaml:"skip_compiler"`
	// SourceSubstring skips blocks whose SOURCE contains it
	SourceSubstring string `json:"skip_source" yaml:"skip_source"`
}

// Skip reports whether a block with md should be dropped.
func (f Filter) Skip(md core.Metadata) bool {
	if f.CompilerPrefix != "" && md.CompiledBy.Present &&
		strings.HasPrefix(strings.ToLower(md.CompiledBy.Value), strings.ToLower(f.CompilerPrefix)) {
		return true
	}
	if f.SourceSubstring != "" && md.Source.Present &&
		strings.Contains(strings.ToLower(md.Source.Value), strings.ToLower(f.SourceSubstring)) {
		return true
	}
	return false
}

// IsZero reports whether the filter skips nothing.
func (f Filter) IsZero() bool {
	return f.CompilerPrefix == "" && f.SourceSubstring == ""
}

// Result holds the blocks emitted from one dump.
type Result struct {
	Blocks []core.Block
	Issues []Issue
	// Lines is the number of lines scanned
	Lines int
	// Skipped counts blocks dropped by the filter
	Skipped int
	// Discarded counts blocks that were restarted or never closed
	Discarded int
}

// Parser scans dumps. A Parser holds no per-dump state and may be reused.
type Parser struct {
	filter Filter
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithFilter sets the skip filter.
func WithFilter(f Filter) Option {
	return func(p *Parser) { p.filter = f }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses the dump at path. On an I/O failure it returns an empty
// result and a *ReadError.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return &Result{}, &ReadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	res, err := p.Parse(f)
	if err != nil {
		var re *ReadError
		if errors.As(err, &re) {
			re.Path = path
		}
		return &Result{}, err
	}
	p.logger.Debug("parsed dump",
		slog.String("path", path),
		slog.Int("lines", res.Lines),
		slog.Int("blocks", len(res.Blocks)),
		slog.Int("skipped", res.Skipped),
		slog.Int("issues", len(res.Issues)))
	return res, nil
}

// Parse scans r line by line. Invalid UTF-8 sequences are dropped.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	s := &scanState{filter: p.filter, logger: p.logger, res: &Result{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		s.lineNo++
		line := strings.ToValidUTF8(strings.TrimRight(scanner.Text(), "\r"), "")
		s.feed(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ReadError{Line: s.lineNo + 1, Err: err}
	}
	s.finish()
	s.res.Lines = s.lineNo
	return s.res, nil
}

// scanState is the Outside/InBlock state machine for one dump.
type scanState struct {
	filter Filter
	logger *slog.Logger
	res    *Result

	lineNo    int
	inBlock   bool
	name      string
	startLine int
	buf       []string
	meta      core.Metadata
}

func (s *scanState) feed(line string) {
	for _, spec := range tagSpecs {
		if idx := strings.Index(line, spec.marker); idx >= 0 {
			spec.field(&s.meta).Set(tagValue(line[idx+len(spec.marker):]))
		}
	}

	switch {
	case isStart(line):
		if s.inBlock {
			s.issue(SeverityWarning, fmt.Sprintf(
				"program marker inside block %q (line %d); previous block discarded", s.name, s.startLine))
			s.res.Discarded++
		}
		s.inBlock = true
		s.name = blockName(line)
		if s.name == "" {
			s.issue(SeverityWarning, "program marker without a name")
		}
		s.startLine = s.lineNo
		s.buf = append(s.buf[:0], line)
	case s.inBlock && strings.Contains(line, endMarker):
		s.buf = append(s.buf, line)
		s.emit()
	case s.inBlock:
		s.buf = append(s.buf, line)
	}
}

func (s *scanState) emit() {
	block := core.Block{
		Name:      s.name,
		Content:   strings.Join(s.buf, "\n"),
		Metadata:  s.meta,
		StartLine: s.startLine,
	}
	if s.filter.Skip(block.Metadata) {
		s.res.Skipped++
		s.logger.Debug("skipped block", slog.String("name", block.Name), slog.Int("line", block.StartLine))
	} else {
		s.res.Blocks = append(s.res.Blocks, block)
	}

	s.inBlock = false
	s.name = ""
	s.buf = nil
	s.meta = core.Metadata{}
}

func (s *scanState) finish() {
	if !s.inBlock {
		return
	}
	s.issue(SeverityWarning, fmt.Sprintf("block %q (line %d) has no %s; discarded", s.name, s.startLine, endMarker))
	s.res.Discarded++
	s.inBlock = false
	s.buf = nil
}

func (s *scanState) issue(sev Severity, msg string) {
	s.res.Issues = append(s.res.Issues, Issue{Line: s.lineNo, Severity: sev, Message: msg})
}

func isStart(line string) bool {
	for _, m := range startMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// blockName returns the third whitespace-separated token of a start line.
func blockName(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}

// tagValue extracts the value following a tag marker: everything up to the
// first ">>" (or end of line), trimmed of spaces and stray '>'.
func tagValue(rest string) string {
	if end := strings.Index(rest, ">>"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(strings.TrimRight(rest, " \t>"))
}
