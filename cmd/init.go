package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/config"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .envsync.yaml at the workspace root",
	Long: `Create .envsync.yaml at the workspace root with the default template globs,
excludes, backup retention and audit setting, ready to be edited and
committed.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing .envsync.yaml")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := workspace.FindRoot(".")
	if err != nil {
		return fmt.Errorf("detect workspace: %w", err)
	}
	path := config.SettingsPath(root)
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteSettings(root, config.DefaultSettings()); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	fmt.Fprintf(stdout(cmd), "%s %s\n", tui.Success("created"), path)
	return nil
}
