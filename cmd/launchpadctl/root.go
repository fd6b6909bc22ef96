package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchpad/internal/version"
)

func newRootCommand() *cobra.Command {
	var jsonFlag bool

	ctx := newCommandContext(&jsonFlag)

	rootCmd := &cobra.Command{
		Use:           "launchpadctl",
		Short:         "Maintenance jobs for the startup programs directory",
		Long:          "Runs the directory maintenance jobs once. Job settings come from the environment (.env is read first).",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print the run summary as JSON")

	rootCmd.AddCommand(newLinkAuditCommand(ctx))
	rootCmd.AddCommand(newEnrichCommand(ctx))
	rootCmd.AddCommand(newDiscoverCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newCheckPendingCommand(ctx))
	rootCmd.AddCommand(newFillReportCommand(ctx))
	rootCmd.AddCommand(newPerksGapCommand(ctx))
	rootCmd.AddCommand(newSchemaCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
