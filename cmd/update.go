package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update [INPUT] [OUTPUT]",
	Short: "Update an env file from its template",
	Long: `Walk the template (default .env.example) and ask for the value of every key,
offering the value already in the output (default .env) or the template
default. Press enter to keep the offered value. Closing the input (Ctrl-D)
clears it.

The output keeps the template's order and comments. Keys that only the output
declares are kept at the end. Nothing is written until every key has been
answered.

  -e, --only-empty   only ask for keys the output leaves empty or lacks
  -f, --only-filled  only ask for keys the output already fills`,
	Args: cobra.MaximumNArgs(2),
	RunE: runUpdate,
}

var (
	updateOnlyEmpty  bool
	updateOnlyFilled bool
	updateNoInput    bool
	updatePlain      bool
	updateDryRun     bool
	updateAll        bool
	updateNoBackup   bool
)

func init() {
	updateCmd.Flags().BoolVarP(&updateOnlyEmpty, "only-empty", "e", false, "Only ask for keys that are empty in the output")
	updateCmd.Flags().BoolVarP(&updateOnlyFilled, "only-filled", "f", false, "Only ask for keys that already have a value in the output")
	updateCmd.Flags().BoolVar(&updateNoInput, "no-input", false, "Accept every offered value without asking")
	updateCmd.Flags().BoolVar(&updatePlain, "plain", false, "Ask with plain lines even on a terminal")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Show the resulting diff without writing")
	updateCmd.Flags().BoolVarP(&updateAll, "all", "a", false, "Update every template pair in the workspace")
	updateCmd.Flags().BoolVar(&updateNoBackup, "no-backup", false, "Do not back up the previous output")
	updateCmd.MarkFlagsMutuallyExclusive("only-empty", "only-filled")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if updateOnlyEmpty && updateOnlyFilled {
		return errors.New("--only-empty and --only-filled are mutually exclusive")
	}
	if updateAll && len(args) > 0 {
		return errors.New("--all does not take file arguments")
	}

	p, err := project.Open(".")
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	pairs, err := resolvePairs(p, args, updateAll)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		fmt.Fprintln(stderr(cmd), tui.Muted("No templates found."))
		return nil
	}

	ctx := commandContext(cmd)
	out := stdout(cmd)
	prompter := newPrompter(cmd, updateNoInput, updatePlain)
	opts := project.UpdateOptions{
		Filter:   updater.Filter{OnlyEmpty: updateOnlyEmpty, OnlyFilled: updateOnlyFilled},
		DryRun:   updateDryRun,
		NoBackup: updateNoBackup,
	}

	for _, pair := range pairs {
		if len(pairs) > 1 {
			fmt.Fprintln(stderr(cmd), tui.Header(p.Rel(pair.Template)+" -> "+p.Rel(pair.Output)))
		}
		res, err := p.Update(ctx, pair.Template, pair.Output, opts, prompter)
		if err != nil {
			return err
		}
		printUpdateResult(out, p, res)
	}
	return nil
}
