package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var rulesFlag string
	var logLevelFlag string

	ctx := newCommandContext(&rulesFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "shotlist",
		Short:         "Normalize LLM shot breakdowns into production shot lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&rulesFlag, "rules", "", "Rules YAML file (overrides RULES_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug|info|warn|error (overrides SHOTLIST_LOG_LEVEL)")

	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newAssetsCommand(ctx))
	rootCmd.AddCommand(newSetsCommand(ctx))
	rootCmd.AddCommand(newBreakdownCommand(ctx))
	rootCmd.AddCommand(newQCCommand(ctx))
	rootCmd.AddCommand(newDossierCommand(ctx))
	rootCmd.AddCommand(newBibleImportCommand(ctx))
	rootCmd.AddCommand(newInboxFetchCommand(ctx))
	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newExportXLSXCommand(ctx))
	rootCmd.AddCommand(newListenCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newUnresolvedCommand(ctx))

	return rootCmd
}
