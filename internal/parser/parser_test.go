package parser

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, p *Parser, input string) *Result {
	t.Helper()
	res, err := p.Parse(strings.NewReader(input))
	require.NoError(t, err)
	return res
}

func TestParse_SingleBlock(t *testing.T) {
	input := strings.Join([]string{
		"CREATE PROGRAM ScriptX GO",
		"<<DA2: DA2_Job1, DA2_Job2>>",
		"EXECUTE 'ScriptY'",
		"END GO",
	}, "\n")

	res := parseString(t, New(), input)
	require.Len(t, res.Blocks, 1)

	b := res.Blocks[0]
	assert.Equal(t, "ScriptX", b.Name)
	assert.Equal(t, 1, b.StartLine)
	assert.Equal(t, input, b.Content)
	assert.Equal(t, "DA2_Job1, DA2_Job2", b.Metadata.DA2.String())
	assert.False(t, b.Metadata.Ops.Present)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 4, res.Lines)
}

func TestParse_MetadataDoesNotLeak(t *testing.T) {
	input := `<<DA2: JobA>>
<<COMPILED_BY: alice>>
CREATE PROGRAM First GO
END GO
CREATE PROGRAM Second GO
END GO
`
	res := parseString(t, New(), input)
	require.Len(t, res.Blocks, 2)

	assert.Equal(t, "JobA", res.Blocks[0].Metadata.DA2.String())
	assert.Equal(t, "alice", res.Blocks[0].Metadata.CompiledBy.String())
	assert.False(t, res.Blocks[1].Metadata.DA2.Present)
	assert.False(t, res.Blocks[1].Metadata.CompiledBy.Present)
}

func TestParse_TagValues(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"plain", "<<OPS: OPS_1>>", "OPS_1"},
		{"no value", "<<OPS:>>", "Unknown"},
		{"spaces only", "<<OPS:   >>", "Unknown"},
		{"unterminated", "<<OPS: OPS_2", "OPS_2"},
		{"single closing bracket", "<<OPS: OPS_3 >", "OPS_3"},
		{"trailing text", "-- <<OPS: OPS_4>> trailing", "OPS_4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "CREATE PROGRAM S GO\n" + tt.line + "\nEND GO\n"
			res := parseString(t, New(), input)
			require.Len(t, res.Blocks, 1)
			assert.Equal(t, tt.want, res.Blocks[0].Metadata.Ops.String())
		})
	}
}

func TestParse_DropProgramStartsBlock(t *testing.T) {
	res := parseString(t, New(), "DROP PROGRAM Old:dba GO\nEND GO\n")
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "Old:dba", res.Blocks[0].Name)
}

func TestParse_UnclosedBlockDiscarded(t *testing.T) {
	input := `CREATE PROGRAM Good GO
END GO
CREATE PROGRAM Dangling GO
EXECUTE Good
`
	res := parseString(t, New(), input)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "Good", res.Blocks[0].Name)
	assert.Equal(t, 1, res.Discarded)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, SeverityWarning, res.Issues[0].Severity)
	assert.Contains(t, res.Issues[0].Message, "Dangling")
}

func TestParse_NestedMarkerRestartsBlock(t *testing.T) {
	input := `CREATE PROGRAM Outer GO
EXECUTE A
CREATE PROGRAM Inner GO
EXECUTE B
END GO
`
	res := parseString(t, New(), input)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "Inner", res.Blocks[0].Name)
	assert.NotContains(t, res.Blocks[0].Content, "EXECUTE A")
	assert.Equal(t, 1, res.Discarded)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 3, res.Issues[0].Line)
	assert.Contains(t, res.Issues[0].Message, "Outer")
}

func TestParse_MarkerWithoutName(t *testing.T) {
	res := parseString(t, New(), "CREATE PROGRAM\nEND GO\n")
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "", res.Blocks[0].Name)
	require.Len(t, res.Issues, 1)
	assert.Contains(t, res.Issues[0].Message, "without a name")
}

func TestParse_EndOutsideBlockIgnored(t *testing.T) {
	res := parseString(t, New(), "END GO\nEXECUTE X\n")
	assert.Empty(t, res.Blocks)
	assert.Empty(t, res.Issues)
}

func TestParse_CRLFAndInvalidUTF8(t *testing.T) {
	input := "CREATE PROGRAM Win GO\r\nEXECUTE \xffTarget\r\nEND GO\r\n"
	res := parseString(t, New(), input)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "Win", res.Blocks[0].Name)
	assert.Equal(t, "CREATE PROGRAM Win GO\nEXECUTE Target\nEND GO", res.Blocks[0].Content)
}

func TestFilter_Skip(t *testing.T) {
	input := `<<COMPILED_BY: SYSTEM_BUILD>>
<<SOURCE: /prod/app.prg>>
CREATE PROGRAM Sys GO
EXECUTE Target
END GO
<<COMPILED_BY: jdoe>>
<<SOURCE: /archive/old/legacy.prg>>
CREATE PROGRAM Archived GO
END GO
<<COMPILED_BY: jdoe>>
CREATE PROGRAM Kept GO
END GO
`
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"Sys", "Archived", "Kept"}},
		{"compiler prefix", Filter{CompilerPrefix: "system"}, []string{"Archived", "Kept"}},
		{"source substring", Filter{SourceSubstring: "ARCHIVE"}, []string{"Sys", "Kept"}},
		{"both", Filter{CompilerPrefix: "SYS", SourceSubstring: "archive"}, []string{"Kept"}},
		{"prefix only matches start", Filter{CompilerPrefix: "build"}, []string{"Sys", "Archived", "Kept"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseString(t, New(WithFilter(tt.filter)), input)
			var names []string
			for _, b := range res.Blocks {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, 3-len(tt.want), res.Skipped)
		})
	}
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{SourceSubstring: "x"}.IsZero())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.txt")
	require.NoError(t, os.WriteFile(path, []byte("CREATE PROGRAM A GO\nEND GO\n"), 0o600))

	res, err := New().ParseFile(path)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "A", res.Blocks[0].Name)
}

func TestParseFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")

	res, err := New().ParseFile(path)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Blocks)

	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, path, re.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestParse_ReadFailure(t *testing.T) {
	res, err := New().Parse(io.MultiReader(strings.NewReader("CREATE PROGRAM A GO\n"), failingReader{}))
	assert.Nil(t, res)

	var re *ReadError
	require.True(t, errors.As(err, &re))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestIssue_String(t *testing.T) {
	i := Issue{Line: 7, Severity: SeverityWarning, Message: "boom"}
	assert.Equal(t, "line 7: warning: boom", i.String())
}
