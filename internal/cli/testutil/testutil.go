// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/scriptdeps/internal/cli/output"
)

// SampleDump is a small program dump: five scripts, one unresolved call.
//
//	LoadOrders -> ValidateOrders -> AuditLog
//	LoadOrders -> PostOrders -> AuditLog, MissingScript
//	VendorAudit -> AuditLog
const SampleDump = `; orders dump
<<COMPILED_BY: jsmith>>
<<DA2: DA2_Nightly, DA2_Orders>>
<<OPS: OPS_Orders>>
CREATE PROGRAM LoadOrders:dba GO
  EXECUTE 'ValidateOrders'
  EXECUTE "PostOrders:dba"
END GO
<<OPS: OPS_Orders>>
CREATE PROGRAM ValidateOrders GO
  EXECUTE AuditLog
END GO
<<DA2: DA2_Nightly>>
CREATE PROGRAM PostOrders GO
  EXECUTE AuditLog
  EXECUTE MissingScript
END GO
<<COMPILED_BY: SYSTEM_INSTALL>>
CREATE PROGRAM VendorAudit GO
  EXECUTE AuditLog
END GO
CREATE PROGRAM AuditLog GO
END GO
`

// SetupTestProject creates a temporary project holding dumps/orders.dat and a
// scriptdeps.yaml pointing at it. It returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "dumps"), 0755); err != nil {
		t.Fatalf("failed to create dumps directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "dumps", "orders.dat"), []byte(SampleDump), 0644); err != nil {
		t.Fatalf("failed to create orders.dat: %v", err)
	}
	cfg := "input: dumps/orders.dat\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "scriptdeps.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to create scriptdeps.yaml: %v", err)
	}
	return tmpDir
}

// WriteDumpFile writes SampleDump to a temp file and returns its path.
func WriteDumpFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.dat")
	if err := os.WriteFile(path, []byte(SampleDump), 0644); err != nil {
		t.Fatalf("failed to write dump: %v", err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
