package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"folder", "folder"},
		{"file:with:colons", "file_with_colons"},
		{"file/with\\slashes", "file_with_slashes"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.flac")
	dst := filepath.Join(dir, "archive", "a.flac")
	if err := os.WriteFile(src, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(context.Background(), src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if Exists(src) {
		t.Error("source still exists")
	}
	if data, _ := os.ReadFile(dst); string(data) != "audio" {
		t.Errorf("dst content = %q", data)
	}
}

func TestMoveFile_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	for _, p := range []string{src, dst} {
		if err := os.WriteFile(p, []byte(p), 0644); err != nil {
			t.Fatal(err)
		}
	}

	err := MoveFile(context.Background(), src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("MoveFile error = %v, want fs.ErrExist", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != dst {
		t.Error("destination was overwritten")
	}
}

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "lists")
	files := map[string]string{
		"a.xml":       "<a/>",
		"sub/b.xml":   "<b/>",
		"sub/c/d.txt": "d",
	}
	for rel, content := range files {
		p := filepath.Join(src, filepath.FromSlash(rel))
		if err := EnsureDir(filepath.Dir(p)); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	dst := src + " (edited)"
	if err := CopyTree(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	for rel, content := range files {
		data, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil || string(data) != content {
			t.Errorf("%s = %q, %v; want %q", rel, data, err, content)
		}
	}

	if err := CopyTree(context.Background(), src, dst); !errors.Is(err, fs.ErrExist) {
		t.Errorf("second CopyTree error = %v, want fs.ErrExist", err)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{G: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageService_ResizeToWidth(t *testing.T) {
	svc := NewImageService()
	tests := []struct {
		name  string
		w, h  int
		width int
		wantW int
		wantH int
	}{
		{"downscale", 300, 200, 100, 100, 67},
		{"smaller kept", 80, 40, 100, 80, 40},
		{"square", 50, 50, 10, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.ResizeToWidth(context.Background(), testPNG(t, tt.w, tt.h), tt.width)
			if err != nil {
				t.Fatalf("ResizeToWidth: %v", err)
			}
			cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output is not JPEG: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImageService_ResizeImage(t *testing.T) {
	out, err := NewImageService().ResizeImage(context.Background(), testPNG(t, 150, 100), 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 100 || cfg.Height != 66 {
		t.Errorf("size = %dx%d, want 100x66", cfg.Width, cfg.Height)
	}
}

func TestImageService_InvalidData(t *testing.T) {
	if _, err := NewImageService().ConvertToJPEG(context.Background(), []byte("not an image")); err == nil {
		t.Error("ConvertToJPEG should fail on garbage")
	}
}
