package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/tui"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string

	cmd := &cobra.Command{
		Use:           "audiotag-tui",
		Short:         "Interactive FLAC to MP3 converter",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ffmpeg := codec.NewFFmpeg(settings.Paths.FFmpeg)
			if err := ffmpeg.Available(); err != nil {
				return err
			}
			return tui.Run(settings, ffmpeg)
		},
	}

	cmd.Flags().StringVar(&configFlag, "config", "", "Configuration file path")
	return cmd
}
