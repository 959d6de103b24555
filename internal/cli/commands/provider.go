package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptProvider asks for the dump path on the terminal.
type promptProvider struct {
	// in is nil for the process stdin
	in  io.ReadCloser
	out io.Writer
}

// inputProvider returns a prompting provider when stdin is a terminal, nil otherwise.
func inputProvider(cmd *cobra.Command) core.PathProvider {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &promptProvider{out: cmd.ErrOrStderr()}
}

// Path reads one line. An empty answer or Ctrl-C/Ctrl-D means no input.
func (p *promptProvider) Path(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Dump file: ",
		Stdin:           p.in,
		Stdout:          p.out,
		Stderr:          p.out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to open prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(line), `"'`), nil
}
