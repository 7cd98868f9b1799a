package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(cc *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "audiotag",
		Short:         "FLAC to MP3 conversion and tag normalization",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cc.ensureSettings()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cc.configFlag, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&cc.verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(newScanCommand(cc))
	rootCmd.AddCommand(newConvertCommand(cc))
	rootCmd.AddCommand(newTagsCommand(cc))
	rootCmd.AddCommand(newTagCommand(cc))
	rootCmd.AddCommand(newFormatCommand(cc))
	rootCmd.AddCommand(newVolumeCommand(cc))
	rootCmd.AddCommand(newPlaylistsCommand(cc))
	rootCmd.AddCommand(newCoverCommand())
	rootCmd.AddCommand(newLookupCommand(cc))
	rootCmd.AddCommand(newHistoryCommand(cc))
	rootCmd.AddCommand(newConfigCommand(cc))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
