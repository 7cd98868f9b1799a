package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

// CopyFile copies a file from source to destination, keeping the source's
// permission bits.
//
// The destination is created if it doesn't exist, or truncated if it does.
//
// Example:
//
//	err := CopyFile(ctx, "/music/Album/01.mp3", "/music/Album (edited)/01.mp3")
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// MoveFile renames src to dst. When the rename crosses devices it falls
// back to copy-then-remove. dst must not exist.
//
// Example:
//
//	err := MoveFile(ctx, "/music/Album/01.flac", "/music/.Album/01.flac")
func MoveFile(ctx context.Context, src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &fs.PathError{Op: "move", Path: dst, Err: fs.ErrExist}
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	info, statErr := os.Stat(src)
	if statErr != nil {
		return statErr
	}
	if info.IsDir() {
		if err := CopyTree(ctx, src, dst); err != nil {
			return err
		}
		return os.RemoveAll(src)
	}
	if err := CopyFile(ctx, src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyTree copies the directory src to dst, which must not exist.
//
// Example:
//
//	err := CopyTree(ctx, "/music/Playlists", "/music/Playlists (edited)")
func CopyTree(ctx context.Context, src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &fs.PathError{Op: "copytree", Path: dst, Err: fs.ErrExist}
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			if err := CopyFile(ctx, path, target); err != nil {
				return fmt.Errorf("copy %q: %w", rel, err)
			}
		}
		return nil
	})
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Example:
//
//	err := WriteFile(ctx, "/music/Album (edited)/description.txt", []byte("Volume adjusted for 3 files."))
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Exists reports whether anything exists at path, without following a
// final symlink.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2")     // Returns "Song_ Part 1_2"
//	SanitizeFileName("Track...")           // Returns "Track"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
