package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	ioutils "github.com/handiism/audiotagtools/internal/io"
)

func newCoverCommand() *cobra.Command {
	var width int
	var name string

	cmd := &cobra.Command{
		Use:         "cover <image>",
		Short:       "Resize a cover image and save it as JPEG next to it",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 {
				return fmt.Errorf("width must be positive")
			}
			name = strings.TrimSuffix(ioutils.SanitizeFileName(strings.TrimSpace(name)), ".jpg")
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}

			src, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(src)
			if err != nil {
				return err
			}
			resized, err := ioutils.NewImageService().ResizeToWidth(cmd.Context(), data, width)
			if err != nil {
				return fmt.Errorf("resize %s: %w", filepath.Base(src), err)
			}

			dst := filepath.Join(filepath.Dir(src), name+".jpg")
			if err := ioutils.WriteFile(cmd.Context(), dst, resized); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", dst)
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 1000, "Maximum width in pixels")
	cmd.Flags().StringVarP(&name, "name", "n", "folder", "Output file name without extension")
	return cmd
}
