package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dbFlag string
	var ownerFlag string

	ctx := newCommandContext(&dbFlag, &ownerFlag)

	rootCmd := &cobra.Command{
		Use:           "cratectl",
		Short:         "Operate the cratedigger label crawler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to the sqlite database (defaults to DB_PATH)")
	rootCmd.PersistentFlags().StringVarP(&ownerFlag, "owner", "o", "", "Owner id (defaults to DEFAULT_OWNER)")

	rootCmd.AddCommand(newLabelsCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newRetryCommand(ctx))
	rootCmd.AddCommand(newStepCommand(ctx))
	rootCmd.AddCommand(newCrawlCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))

	return rootCmd
}
