package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/audit"
	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View and verify audit log",
	Long: `View the audit log and verify chain integrity.

The audit log (.envsync/audit.log at the workspace root) records every update
and restore: when, which file, which keys changed and which backup was taken.
Values are never logged. Each entry links to the previous entry, forming a
tamper-evident chain.`,
}

var auditShowCmd = &cobra.Command{
	Use:   "show [--last=N]",
	Short: "Show audit log entries",
	RunE:  runAuditShow,
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify audit log chain integrity",
	Long: `Verify that the audit log chain is intact.

Checks that each entry's prev_hash matches the hash of the previous entry.
Reports any breaks in the chain.`,
	RunE: runAuditVerify,
}

var (
	auditLastN   int
	auditJSON    bool
	auditWorkdir string
)

var ErrAuditBroken = errors.New("audit log chain is broken")

func init() {
	auditShowCmd.Flags().IntVarP(&auditLastN, "last", "n", 10, "Number of entries to show")
	auditShowCmd.Flags().BoolVar(&auditJSON, "json", false, "Print entries as JSON")
	auditCmd.PersistentFlags().StringVarP(&auditWorkdir, "workdir", "w", ".", "Directory inside the workspace")

	auditCmd.AddCommand(auditShowCmd)
	auditCmd.AddCommand(auditVerifyCmd)

	rootCmd.AddCommand(auditCmd)
}

func auditRoot() (string, error) {
	dir := auditWorkdir
	if dir == "" {
		dir = "."
	}
	p, err := project.Open(dir)
	if err != nil {
		return "", fmt.Errorf("open workspace: %w", err)
	}
	return p.Root, nil
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	root, err := auditRoot()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	entries, err := audit.Show(root, auditLastN)
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			fmt.Fprintln(out, "No audit log found. Updates are logged once an env file is written.")
			return nil
		}
		return fmt.Errorf("read audit log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries in audit log.")
		return nil
	}

	if auditJSON {
		b, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Fprintln(out, string(b))
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %s", tui.Muted(e.Timestamp), e.Op, e.File)
		if len(e.Keys) > 0 {
			line += "  " + tui.Key(strings.Join(e.Keys, ","))
		}
		if e.Backup != "" {
			line += "  " + tui.Muted("backup "+e.Backup)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	root, err := auditRoot()
	if err != nil {
		return err
	}
	out := stdout(cmd)

	result, err := audit.Verify(root)
	if err != nil {
		if errors.Is(err, audit.ErrNoAuditLog) {
			fmt.Fprintln(out, "No audit log found.")
			return nil
		}
		return fmt.Errorf("verify audit log: %w", err)
	}

	fmt.Fprintf(out, "Audit log verified: %d entries\n", result.TotalEntries)

	if result.OK() {
		fmt.Fprintln(out, "Chain integrity: "+tui.Success("OK"))
		return nil
	}

	if result.FirstModified > 0 {
		fmt.Fprintf(out, "First entry is unreadable (line %d)\n", result.FirstModified)
	}
	if len(result.Breaks) > 0 {
		fmt.Fprintf(out, "Chain breaks detected at lines: %v\n", result.Breaks)
	}
	fmt.Fprintln(out, tui.Warning("Warning: Log may have been tampered with."))
	return ErrAuditBroken
}
