package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/workspace"
)

var checkCmd = &cobra.Command{
	Use:   "check [INPUT] [OUTPUT]",
	Short: "Check that an env file declares every template key",
	Long: `Compare the output (default .env) with its template (default .env.example)
by key. Missing keys fail the check; empty and extra keys are reported.

With --all every template pair in the workspace is checked concurrently.
Values are never printed.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCheck,
}

var (
	checkAll  bool
	checkJSON bool
)

var ErrCheckFailed = errors.New("env files are out of date")

func init() {
	checkCmd.Flags().BoolVarP(&checkAll, "all", "a", false, "Check every template pair in the workspace")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the reports as JSON")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkAll && len(args) > 0 {
		return errors.New("--all does not take file arguments")
	}

	p, err := project.Open(".")
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	var reports []project.PairReport
	if checkAll {
		reports, err = p.CheckAll(commandContext(cmd))
	} else {
		var pairs []workspace.Pair
		pairs, err = resolvePairs(p, args, false)
		if err == nil {
			var r project.PairReport
			r, err = p.CheckPair(pairs[0])
			r.Template, r.Output = p.Rel(r.Template), p.Rel(r.Output)
			reports = append(reports, r)
		}
	}
	if err != nil {
		return err
	}

	out := stdout(cmd)
	if checkJSON {
		b, _ := json.MarshalIndent(reports, "", "  ")
		fmt.Fprintln(out, string(b))
	} else {
		for _, r := range reports {
			printReport(out, r.Output, r.Exists, r.Report)
		}
	}

	for _, r := range reports {
		if !r.OK() {
			return ErrCheckFailed
		}
	}
	return nil
}
