package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(opts ...func(*commandContext)) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	for _, opt := range opts {
		opt(ctx)
	}

	rootCmd := &cobra.Command{
		Use:           "albumctl",
		Short:         "Inspect and exercise the album delivery workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newCatalogCommand(ctx))
	rootCmd.AddCommand(newTransitionCommand(ctx))
	rootCmd.AddCommand(newSimulateUploadCommand(ctx))

	return rootCmd
}
