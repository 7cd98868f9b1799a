package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/journal"
	"github.com/handiism/audiotagtools/internal/volume"
)

func newVolumeCommand(cc *commandContext) *cobra.Command {
	volumeCmd := &cobra.Command{
		Use:   "volume",
		Short: "Raise or lower the volume of the MP3s in a directory",
	}
	volumeCmd.AddCommand(newVolumeStepCommand(cc, "up", 1))
	volumeCmd.AddCommand(newVolumeStepCommand(cc, "down", -1))
	return volumeCmd
}

func newVolumeStepCommand(cc *commandContext, name string, sign float64) *cobra.Command {
	var level float64
	var inPlace bool

	cmd := &cobra.Command{
		Use:   name + " <dir>",
		Short: fmt.Sprintf("Turn the volume %s by --level dB", name),
		Long: "Re-encode every MP3 in dir with a volume filter, keeping the tags. Output goes\n" +
			"to \"<dir> (edited)\" unless --in-place, with a description.txt of the change.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			dir, err := resolveDir(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("level") {
				level = settings.Volume.StepDB
			}
			if level < 0 {
				return fmt.Errorf("level must not be negative, use volume %s", opposite(name))
			}
			if !cmd.Flags().Changed("in-place") {
				inPlace = settings.Volume.InPlace
			}
			encoder, err := cc.encoder(settings)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			scope, err := cc.beginRun(cmd, journal.KindVolume, dir)
			if err != nil {
				return err
			}
			defer func() { scope.finish(ctx, "", "", err) }()

			adjuster := volume.NewAdjuster(encoder, scope.sink)
			res, err := adjuster.Adjust(ctx, dir, volume.Options{
				GainDB:  sign * level,
				InPlace: inPlace,
				Bitrate: settings.Convert.Bitrate,
			})
			if res != nil {
				for _, name := range res.Files {
					scope.record(ctx, "volume", filepath.Join(res.Dir, name), filepath.Join(res.Output, name), nil)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nOutput: %s\n", volume.Description(len(res.Files), res.GainDB), res.Output)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&level, "level", "l", 10, "Gain in dB")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "Replace the files instead of writing \"<dir> (edited)\"")
	return cmd
}

func opposite(direction string) string {
	if direction == "up" {
		return "down"
	}
	return "up"
}
