package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "engage",
		Short: "GitHub issue engagement scoring",
		Long: `A CLI tool that scores GitHub issues by community engagement.
It weighs comments, reactions, and contributors, compares against a
week-old snapshot, and can write scores back to a project board.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add score flags to root command so `engage` and `engage score` work identically
	addScoreFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdScore(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
