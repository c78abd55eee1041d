// Package cli provides the Cobra command structure for flowfix.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/flowfix/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root flowfix command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "flowfix",
		Short: "Flow analysis and quick fixes for Java sources",
		Long: `flowfix analyzes the control flow and data flow of Java methods.

It reports unreachable and dead code, variables read before assignment,
missing returns, reassigned finals, null dereferences, unused locals,
unhandled checked exceptions and misplaced jumps. Most findings come with
correction proposals that flowfix can apply in place, guarded by re-parse
validation, conflict detection, dry-run mode and optional backups.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(withHelpSections(newCheckCommand(info), helpShowExitCodes))
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(withHelpSections(newInitCommand(), helpShowPacks))
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	withHelpSections(rootCmd, helpShowPacks, helpShowExitCodes)
	installHelp(rootCmd)

	return rootCmd
}
