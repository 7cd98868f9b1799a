package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/journal"
	"github.com/handiism/audiotagtools/internal/playlist"
)

func newPlaylistsCommand(cc *commandContext) *cobra.Command {
	playlistsCmd := &cobra.Command{
		Use:   "playlists",
		Short: "Find or rewrite XML playlists that reference FLAC files",
	}
	playlistsCmd.AddCommand(newPlaylistsFindCommand())
	playlistsCmd.AddCommand(newPlaylistsRewriteCommand(cc))
	return playlistsCmd
}

func newPlaylistsFindCommand() *cobra.Command {
	var out listOutput

	cmd := &cobra.Command{
		Use:   "find <path>",
		Short: "List XML playlists that mention .flac",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveDir(args[0])
			if err != nil {
				return err
			}
			files, err := playlist.FindFLACPlaylists(cmd.Context(), root)
			if err != nil {
				return err
			}
			return out.write(cmd.OutOrStdout(), files)
		},
	}

	cmd.Flags().StringVarP(&out.file, "output", "o", "", "Write the list to a new file")
	cmd.Flags().BoolVarP(&out.clipboard, "clipboard", "c", false, "Copy the list to the clipboard")
	return cmd
}

func newPlaylistsRewriteCommand(cc *commandContext) *cobra.Command {
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "rewrite <path>",
		Short: "Point XML playlists at .mp3 instead of .flac",
		Long: "Replace .flac with .mp3 in every XML playlist under path. Unless --in-place,\n" +
			"path is first copied to \"<path> (edited)\" and the copy is rewritten.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			root, err := resolveDir(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			scope, err := cc.beginRun(cmd, journal.KindPlaylists, root)
			if err != nil {
				return err
			}
			defer func() { scope.finish(ctx, "", "", err) }()

			edited, err := playlist.RewriteFLACPlaylists(ctx, root, inPlace)
			for _, file := range edited {
				scope.record(ctx, "rewrite", file, "", nil)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, file := range edited {
				fmt.Fprintln(out, file)
			}
			fmt.Fprintf(out, "Rewrote %d playlists\n", len(edited))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "Rewrite the playlists under path directly")
	return cmd
}
