package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/log"
)

var rootCmd = &cobra.Command{
	Use:           "envsync",
	Short:         "Keep .env files in sync with their templates",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `envsync keeps a real .env file in step with the .env.example template it is
derived from. Every key of the template is offered with its current value;
answers are written back without disturbing comments, blank lines, quoting or
keys the template does not know.

WORKFLOW:

  - The template is the source of truth for which keys exist and in what order.
  - Values already in .env win over template defaults.
  - The previous .env is kept as an encrypted backup before it is replaced.

EXAMPLES:

  envsync update                      # .env.example -> .env, ask for every key
  envsync update -e                   # only ask for keys that are still empty
  envsync update --all --no-input     # fill every template pair with defaults
  envsync check --all                 # fail when an output lacks template keys
  envsync watch                       # re-sync whenever the template changes

Set ENVSYNC_LOG=debug to see what envsync is doing.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init()
	},
}

func init() {
	rootCmd.SetVersionTemplate("envsync version {{.Version}}\n")
}

// SetVersion sets the version string shown by --version (e.g. from ldflags).
func SetVersion(v string) { rootCmd.Version = v }

func version() string {
	if rootCmd.Version == "" {
		return "dev"
	}
	return rootCmd.Version
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
