package scan

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/handiism/audiotagtools/internal/model"
)

// Predicate reports whether the file at path counts as a match.
type Predicate func(path string, d fs.DirEntry) (bool, error)

// Extension matches files whose extension equals ext, ignoring case.
func Extension(ext string) Predicate {
	return func(path string, d fs.DirEntry) (bool, error) {
		return model.HasExt(d.Name(), ext), nil
	}
}

// Contains matches files with extension ext whose content contains substr.
func Contains(ext, substr string) Predicate {
	needle := []byte(substr)
	return func(path string, d fs.DirEntry) (bool, error) {
		if !model.HasExt(d.Name(), ext) {
			return false, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return false, err
		}
		return bytes.Contains(data, needle), nil
	}
}

// FindMusicDirs walks root and returns every non-hidden directory that
// directly contains at least one file accepted by match. Paths are
// absolute and sorted ascending.
func FindMusicDirs(ctx context.Context, root string, match Predicate) ([]model.MusicDirectory, error) {
	files, err := walk(ctx, root, match)
	if err != nil {
		return nil, err
	}

	byDir := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		byDir[dir] = append(byDir[dir], filepath.Base(f))
	}

	dirs := make([]model.MusicDirectory, 0, len(byDir))
	for dir, names := range byDir {
		sort.Strings(names)
		dirs = append(dirs, model.MusicDirectory{Path: dir, Files: names})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	return dirs, nil
}

// FindFiles walks root and returns the absolute, sorted paths of all
// matching files outside hidden directories.
func FindFiles(ctx context.Context, root string, match Predicate) ([]string, error) {
	files, err := walk(ctx, root, match)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Dirs projects scan results to their paths.
func Dirs(dirs []model.MusicDirectory) []string {
	paths := make([]string, len(dirs))
	for i, d := range dirs {
		paths[i] = d.Path
	}
	return paths
}

func walk(ctx context.Context, root string, match Predicate) ([]string, error) {
	if err := model.CheckDir(root); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidPath, err)
	}
	hiddenRoot := isHidden(filepath.Base(root))

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if hiddenRoot && filepath.Dir(path) == root {
			return nil
		}
		if !isFile(path, d) {
			return nil
		}
		ok, err := match(path, d)
		if err != nil {
			return fmt.Errorf("match %q: %w", path, err)
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isFile accepts regular files and symlinks that resolve to one.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
