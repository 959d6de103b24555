// Package main provides tests for the scriptdeps CLI.
package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/scriptdeps/internal/cli"
	"github.com/leapstack-labs/scriptdeps/internal/cli/config"
	"github.com/leapstack-labs/scriptdeps/internal/cli/testutil"
)

func TestVersionCommand(t *testing.T) {
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "scriptdeps") {
		t.Errorf("version output should contain 'scriptdeps', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"list", "deps", "search", "export", "explore", "serve"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestListCommand(t *testing.T) {
	config.ResetConfig()
	dump := testutil.WriteDumpFile(t)
	t.Chdir(filepath.Dir(dump))

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"list", "--input", dump, "--output", "markdown"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("list command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "## LoadOrders") {
		t.Errorf("list output should contain '## LoadOrders', got: %s", output)
	}
}

func TestListCommandJSON(t *testing.T) {
	config.ResetConfig()
	dump := testutil.WriteDumpFile(t)
	t.Chdir(filepath.Dir(dump))

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"list", "--output", "json", "--input", dump})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("list --output json command error = %v", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("list JSON output should be an object, got: %s", buf.String())
	}
}
