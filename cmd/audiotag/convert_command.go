package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/convert"
	"github.com/handiism/audiotagtools/internal/journal"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/reorganize"
)

type convertFlags struct {
	bitrate         int
	inPlace         bool
	deleteOriginals bool
	workers         int
	policy          string
	playlist        bool
}

func newConvertCommand(cc *commandContext) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <root>",
		Short: "Convert every FLAC directory under root to MP3",
		Long: "Convert every FLAC directory under root to MP3. Converted files are written to\n" +
			"\"<dir> (converted)\"; with --in-place they replace the originals, which are\n" +
			"archived in a hidden sibling directory or, with --delete, removed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cc.ensureSettings()
			if err != nil {
				return err
			}
			s := *settings
			if err := flags.apply(cmd, &s); err != nil {
				return err
			}
			root, err := resolveDir(args[0])
			if err != nil {
				return err
			}
			encoder, err := cc.encoder(&s)
			if err != nil {
				return err
			}
			return runConvert(cmd, cc, &s, encoder, root)
		},
	}

	cmd.Flags().IntVarP(&flags.bitrate, "bitrate", "b", codec.DefaultBitrate, "MP3 bitrate in kbps (128, 160, 192, 256, 320)")
	cmd.Flags().BoolVarP(&flags.inPlace, "in-place", "i", false, "Replace the originals, archiving them")
	cmd.Flags().BoolVarP(&flags.deleteOriginals, "delete", "d", false, "Delete the originals instead of archiving (implies --in-place)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Parallel encodes per directory")
	cmd.Flags().StringVar(&flags.policy, "policy", "", "On a failing file: skip or abort")
	cmd.Flags().BoolVar(&flags.playlist, "playlist", false, "Write a playlist into each converted directory")
	return cmd
}

// apply overrides settings with the flags the user set.
func (f convertFlags) apply(cmd *cobra.Command, s *config.Settings) error {
	changed := cmd.Flags().Changed
	if changed("bitrate") {
		s.Convert.Bitrate = codec.ResolveBitrate(f.bitrate)
	}
	if changed("in-place") {
		s.Convert.InPlace = f.inPlace
	}
	if changed("delete") {
		s.Convert.DeleteOriginals = f.deleteOriginals
		if f.deleteOriginals {
			s.Convert.InPlace = true
		}
	}
	if changed("workers") {
		s.Convert.Workers = f.workers
	}
	if changed("policy") {
		s.Convert.FailurePolicy = f.policy
	}
	if changed("playlist") {
		s.Convert.CreatePlaylist = f.playlist
	}
	return s.Validate()
}

func runConvert(cmd *cobra.Command, cc *commandContext, s *config.Settings, encoder codec.Encoder, root string) (err error) {
	ctx := cmd.Context()
	scope, err := cc.beginRun(cmd, journal.KindConvert, root)
	if err != nil {
		return err
	}
	var status journal.Status
	defer func() { scope.finish(ctx, status, "", err) }()

	manager, err := convert.NewManager(s, encoder, scope.sink)
	if err != nil {
		return err
	}
	if scope.recorder != nil {
		manager.SetRecorder(scope.recorder)
	}
	if err := manager.Initialize(ctx, root); err != nil {
		return err
	}

	results, runErr := manager.Start(ctx)
	for _, res := range results {
		for _, failure := range res.Failures {
			scope.record(ctx, "transcode", failure.Source, "", failure)
		}
	}

	out := cmd.OutOrStdout()
	if len(results) > 0 {
		fmt.Fprintln(out, renderConvertResults(results))
	}
	for _, res := range results {
		var partial *reorganize.PartialStateError
		if errors.As(res.Err, &partial) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", partial.Report())
		}
	}

	summary := convert.Summarize(results)
	if id := scope.runID(); id != "" {
		fmt.Fprintf(out, "Run %s: %d converted, %d failed in %d directories\n", id, summary.Converted, summary.Failed, summary.Directories)
	}
	if runErr != nil {
		return runErr
	}
	if summary.Errors > 0 {
		return fmt.Errorf("%d of %d directories failed", summary.Errors, summary.Directories)
	}
	if summary.Degraded > 0 {
		status = journal.StatusDegraded
		return fmt.Errorf("%d files could not be converted; see %s", summary.Failed, pluralDirs(summary.Degraded))
	}
	return nil
}

func renderConvertResults(results []convert.DirectoryResult) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			filepath.Base(res.Dir),
			strconv.Itoa(len(res.Converted)),
			strconv.Itoa(len(res.Failures)),
			resultStatus(res),
			res.Output,
		})
	}
	return renderTable(
		[]string{"Directory", "Converted", "Failed", "Status", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func resultStatus(res convert.DirectoryResult) string {
	switch {
	case res.Err != nil:
		return string(model.Kind(res.Err))
	case res.Degraded:
		return "degraded"
	}
	return "ok"
}

func pluralDirs(n int) string {
	if n == 1 {
		return "the staging directory"
	}
	return fmt.Sprintf("the %d staging directories", n)
}
