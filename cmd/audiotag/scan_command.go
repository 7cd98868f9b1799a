package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/scan"
)

func newScanCommand(cc *commandContext) *cobra.Command {
	var fileType string
	var playlists bool
	var out listOutput

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "List directories holding files of a type",
		Long: "List every non-hidden directory under path that directly holds files of the\n" +
			"given type. With --playlists, list XML playlists referencing that type instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveDir(args[0])
			if err != nil {
				return err
			}
			ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
			if ext == "" {
				return fmt.Errorf("file type must not be empty")
			}

			var lines []string
			if playlists {
				lines, err = scan.FindFiles(cmd.Context(), root, scan.Contains("xml", "."+ext))
			} else {
				var dirs []model.MusicDirectory
				dirs, err = scan.FindMusicDirs(cmd.Context(), root, scan.Extension(ext))
				lines = scan.Dirs(dirs)
			}
			if err != nil {
				return err
			}
			if len(lines) == 0 && !out.silent {
				fmt.Fprintf(cmd.ErrOrStderr(), "No matches for %s under %s\n", ext, root)
			}
			return out.write(cmd.OutOrStdout(), lines)
		},
	}

	cmd.Flags().StringVarP(&fileType, "type", "t", "flac", "File extension to look for")
	cmd.Flags().BoolVar(&playlists, "playlists", false, "List XML playlists referencing the type")
	cmd.Flags().BoolVarP(&out.clipboard, "clipboard", "c", false, "Copy the list to the clipboard")
	cmd.Flags().StringVarP(&out.file, "output", "o", "", "Write the list to a new file")
	cmd.Flags().BoolVarP(&out.silent, "silent", "s", false, "Do not print the list")
	return cmd
}

// resolveDir expands ~ and checks that path is an existing directory.
func resolveDir(path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", err
	}
	if err := model.CheckDir(expanded); err != nil {
		return "", err
	}
	return expanded, nil
}
