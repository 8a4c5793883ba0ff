package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore backups of env files",
	Long: `Before update replaces an env file it stores the previous contents as an
age-encrypted snapshot in the state directory. The key lives in the config
directory (keys.yaml) or in ENVSYNC_BACKUP_IDENTITY.`,
}

var backupListCmd = &cobra.Command{
	Use:   "list [OUTPUT]",
	Short: "List backups of an env file, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [OUTPUT]",
	Short: "Restore an env file from a backup",
	Long: `Replace the env file (default .env) with a backup: the newest one, or the one
named by --name as shown by backup list. The current contents are lost unless
they were backed up themselves.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupRestore,
}

var (
	backupName string
	backupYes  bool
)

func init() {
	backupRestoreCmd.Flags().StringVarP(&backupName, "name", "n", "", "Backup to restore (default: newest)")
	backupRestoreCmd.Flags().BoolVarP(&backupYes, "yes", "y", false, "Do not ask for confirmation")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	rootCmd.AddCommand(backupCmd)
}

func backupTarget(args []string) (string, error) {
	output := defaultOutput
	if len(args) == 1 {
		output = args[0]
	}
	return filepath.Abs(output)
}

func runBackupList(cmd *cobra.Command, args []string) error {
	output, err := backupTarget(args)
	if err != nil {
		return err
	}
	p, err := project.Open(filepath.Dir(output))
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	store, err := p.BackupStore()
	if err != nil {
		return err
	}
	snaps, err := store.List(output)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	if len(snaps) == 0 {
		fmt.Fprintf(out, "No backups of %s.\n", p.Rel(output))
		return nil
	}
	fmt.Fprintln(out, tui.Label("Backups of "+p.Rel(output)+":"))
	for _, s := range snaps {
		fmt.Fprintf(out, "  %s  %s\n", s.Name(), tui.Muted(s.Time.Local().Format("2006-01-02 15:04:05")))
	}
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	output, err := backupTarget(args)
	if err != nil {
		return err
	}
	p, err := project.Open(filepath.Dir(output))
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	if !backupYes {
		if !isTerminal() {
			return errors.New("refusing to overwrite without confirmation; pass --yes")
		}
		ok, err := tui.Confirm("Replace " + p.Rel(output) + " with a backup?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	snap, err := p.Restore(output, backupName)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "%s %s from %s\n", tui.Success("restored"), p.Rel(output), snap.Name())
	return nil
}
