package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownWriter(t *testing.T) {
	w := NewMarkdownWriter()
	w.Header(2, "Commands")
	w.Table([]string{"Command", "Description"}, [][]string{{InlineCode("deps"), "Show relations"}})

	out := string(w.Bytes())
	assert.Contains(t, out, "## Commands\n")
	assert.Contains(t, out, "| Command | Description |")
	assert.Contains(t, out, "`deps`")
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "a b \\| c", cleanDescription("a\n  b | c"))
}

func TestCleanExample(t *testing.T) {
	got := cleanExample("  # list\n  scriptdeps list\n")
	assert.Equal(t, "# list\nscriptdeps list", got)
}

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "SCRIPTDEPS_INPUT")
	assert.Contains(t, string(index), "[`deps`](deps.md)")

	deps, err := os.ReadFile(filepath.Join(dir, "deps.md"))
	require.NoError(t, err)
	assert.Contains(t, string(deps), "scriptdeps deps <script>")

	for _, name := range []string{"list", "deps", "search", "export", "explore", "serve"} {
		data, err := os.ReadFile(filepath.Join(dir, name+".md"))
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(string(data), "---\n"), name)
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SCRIPTDEPS_INPUT", envName("input"))
	assert.Equal(t, "SCRIPTDEPS_FILTER_SKIP_COMPILER", envName("filter.skip_compiler"))
	assert.Equal(t, "SCRIPTDEPS_REPL_HISTORY_FILE", envName("repl.history_file"))
}
