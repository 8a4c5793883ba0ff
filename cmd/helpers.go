package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/updater"
	"github.com/xmazu/envsync/internal/workspace"
)

const (
	defaultInput  = ".env.example"
	defaultOutput = ".env"
)

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func stdin(cmd *cobra.Command) io.Reader {
	if cmd == nil {
		return os.Stdin
	}
	return cmd.InOrStdin()
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd == nil || cmd.Context() == nil {
		return context.Background()
	}
	return cmd.Context()
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// newPrompter picks how values are asked for: defaults only, a huh form on a
// terminal, or plain lines otherwise.
var newPrompter = func(cmd *cobra.Command, noInput, plain bool) updater.Prompter {
	switch {
	case noInput:
		return updater.Defaults
	case !plain && isTerminal():
		return &tui.FormPrompter{Accessible: os.Getenv("ACCESSIBLE") != ""}
	default:
		return tui.NewLinePrompter(stdin(cmd), stderr(cmd))
	}
}

// resolvePairs returns absolute template/output pairs: every discovered pair
// with all, otherwise the one named by args (defaulting to .env.example and
// .env in the current directory).
func resolvePairs(p *project.Project, args []string, all bool) ([]workspace.Pair, error) {
	if all {
		pairs, err := p.Pairs()
		if err != nil {
			return nil, err
		}
		for i := range pairs {
			pairs[i] = workspace.Pair{Template: p.Abs(pairs[i].Template), Output: p.Abs(pairs[i].Output)}
		}
		return pairs, nil
	}

	input, output := defaultInput, ""
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}
	if output == "" {
		derived, ok := workspace.OutputFor(input)
		if !ok {
			derived = filepath.Join(filepath.Dir(input), defaultOutput)
		}
		output = derived
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return nil, err
	}
	return []workspace.Pair{{Template: absIn, Output: absOut}}, nil
}
