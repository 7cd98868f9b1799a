package playlist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	ioutils "github.com/handiism/audiotagtools/internal/io"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/scan"
)

var (
	flacRef = []byte(".flac")
	mp3Ref  = []byte(".mp3")
)

// FindFLACPlaylists returns the XML files under root that mention .flac,
// sorted.
func FindFLACPlaylists(ctx context.Context, root string) ([]string, error) {
	return scan.FindFiles(ctx, root, scan.Contains("xml", string(flacRef)))
}

// RewriteFLACPlaylists replaces .flac with .mp3 in every XML playlist
// under root and returns the edited files. Unless inPlace, root is first
// copied to "<root> (edited)", which must not exist, and the copy is
// edited.
func RewriteFLACPlaylists(ctx context.Context, root string, inPlace bool) ([]string, error) {
	if err := model.CheckDir(root); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	target := root
	if !inPlace {
		target = model.EditedPath(root)
		if err := ioutils.CopyTree(ctx, root, target); err != nil {
			return nil, fmt.Errorf("copy %s: %w", root, err)
		}
	}

	files, err := FindFLACPlaylists(ctx, target)
	if err != nil {
		return nil, err
	}
	edited := make([]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return edited, err
		}
		if err := rewrite(file); err != nil {
			return edited, fmt.Errorf("rewrite %s: %w", file, err)
		}
		edited = append(edited, file)
	}
	return edited, nil
}

func rewrite(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes.ReplaceAll(data, flacRef, mp3Ref), info.Mode().Perm())
}
