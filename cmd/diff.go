package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/updater"
)

var diffCmd = &cobra.Command{
	Use:   "diff [INPUT] [OUTPUT]",
	Short: "Show what a non-interactive update would change",
	Long: `Print the line diff between the current output and the result of updating it
from the template with every offered value accepted. Nothing is written.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDiff,
}

var diffAll bool

func init() {
	diffCmd.Flags().BoolVarP(&diffAll, "all", "a", false, "Diff every template pair in the workspace")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	p, err := project.Open(".")
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	pairs, err := resolvePairs(p, args, diffAll)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	for _, pair := range pairs {
		res, err := p.Update(commandContext(cmd), pair.Template, pair.Output, project.UpdateOptions{DryRun: true}, updater.Defaults)
		if err != nil {
			return err
		}
		lines := updater.Diff(res.Before, res.After)
		if !updater.Changed(lines) {
			continue
		}
		fmt.Fprintln(out, tui.Label("--- "+p.Rel(pair.Output)))
		fmt.Fprintln(out, tui.Label("+++ "+p.Rel(pair.Output)+" (from "+p.Rel(pair.Template)+")"))
		tui.PrintDiff(out, lines)
	}
	return nil
}
