package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./printbot.yaml"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "printbot",
		Short:         "Printer notifications as Discord embeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", defaultConfigPath, "Configuration file path (json, yaml or toml)")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	rootCmd.AddCommand(newEmbedCommand())
	rootCmd.AddCommand(newUploadCommand())
	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newHistoryCommand(&configFlag))
	return rootCmd
}
