package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/audit"
	"github.com/xmazu/envsync/internal/log"
	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/updater"
	"github.com/xmazu/envsync/internal/watch"
	"github.com/xmazu/envsync/internal/workspace"
)

var watchCmd = &cobra.Command{
	Use:   "watch [INPUT] [OUTPUT]",
	Short: "Re-sync env files whenever their template changes",
	Long: `Watch the template (default .env.example), or every template in the workspace
with --all, and run a non-interactive update each time it changes: keys new to
the template are added with their default, existing values are kept.

Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runWatch,
}

var (
	watchAll      bool
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().BoolVarP(&watchAll, "all", "a", false, "Watch every template in the workspace")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before syncing")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := project.Open(".")
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	pairs, err := resolvePairs(p, args, watchAll)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no templates to watch")
	}

	w, err := watch.NewFileWatcher(watchDebounce)
	if err != nil {
		return err
	}
	defer w.Close()

	outputs := make(map[string]workspace.Pair, len(pairs))
	for _, pair := range pairs {
		if err := w.Add(pair.Template); err != nil {
			return err
		}
		outputs[pair.Template] = pair
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := stdout(cmd)
	sync := func(ctx context.Context, changed []string) error {
		for _, tmpl := range changed {
			pair, ok := outputs[tmpl]
			if !ok {
				continue
			}
			res, err := p.Update(ctx, pair.Template, pair.Output, project.UpdateOptions{Op: audit.OpWatch}, updater.Defaults)
			if err != nil {
				log.WithError(err).Errorf("sync %s", p.Rel(pair.Template))
				fmt.Fprintf(out, "%s %s: %v\n", tui.Error("✗"), p.Rel(pair.Template), err)
				continue
			}
			printUpdateResult(out, p, res)
		}
		return nil
	}

	// Bring everything up to date before waiting for changes.
	initial := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		initial = append(initial, pair.Template)
	}
	if err := sync(ctx, initial); err != nil {
		return err
	}

	fmt.Fprintf(stderr(cmd), "%s %d template(s), Ctrl-C to stop\n", tui.Label("Watching"), len(pairs))
	return w.Run(ctx, sync)
}
