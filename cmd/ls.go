package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/workspace"
)

var lsCmd = &cobra.Command{
	Use:   "ls [directory]",
	Short: "List env templates and their outputs",
	Long: `Discover env templates (.env.example, .env.sample, .env.template, .env.dist)
under the workspace root, or under the given directory, and print them as a
tree together with the output each one feeds.

Directories listed in .gitignore or excluded in .envsync.yaml are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	var (
		root     string
		settings *config.Settings
		marker   string
	)

	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("directory %s: %w", args[0], err)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", args[0])
		}
		root = args[0]
		if settings, err = config.LoadSettings(root); err != nil {
			return err
		}
	} else {
		p, err := project.Open(".")
		if err != nil {
			return fmt.Errorf("detect workspace: %w", err)
		}
		root, settings, marker = p.Root, p.Settings, p.Marker
	}

	pairs, err := workspace.Discover(root, settings)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	out := stdout(cmd)
	if len(pairs) == 0 {
		fmt.Fprintln(out, tui.Muted("No templates found."))
		return nil
	}

	if marker != "" {
		fmt.Fprintf(out, "%s%s (%s)\n\n", tui.Label("Workspace: "), root, workspace.FormatMarkerForDisplay(marker))
	}

	tree := workspace.BuildTree(pairs)
	workspace.PrintTree(out, tree, func(pair workspace.Pair) string {
		status := tui.Success("ok")
		if !workspace.Exists(workspace.Join(root, pair.Output)) {
			status = tui.Warning("missing")
		}
		return tui.Muted("-> "+pair.Output) + " " + status
	})
	return nil
}
