package playlist

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testEntries() []Entry {
	return []Entry{
		{File: "01 Prison Song.mp3", Title: "Prison Song", Artist: "System of a Down", Album: "Toxicity", Duration: 201 * time.Second},
		{File: "02 Needles.mp3", Title: "Needles & Pins", Artist: "System of a Down", Album: "Toxicity", Duration: 193400 * time.Millisecond},
		{File: "03 untitled.mp3"},
	}
}

func TestCreator(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		extended bool
		contains []string
		absent   []string
	}{
		{"m3u plain", FormatM3U, false, []string{"01 Prison Song.mp3\n02 Needles.mp3\n"}, []string{"#EXTM3U", "#EXTINF"}},
		{"m3u extended", FormatM3U, true, []string{"#EXTM3U\n", "#EXTINF:201,System of a Down - Prison Song\n", "#EXTINF:-1,03 untitled\n"}, nil},
		{"pls", FormatPLS, false, []string{"[playlist]\n", "File2=02 Needles.mp3\n", "Length2=193\n", "NumberOfEntries=3\n", "Version=2\n"}, nil},
		{"wpl", FormatWPL, false, []string{"<?wpl", "<title>Toxicity &amp; More</title>", `<media src="01 Prison Song.mp3"/>`}, nil},
		{"zpl", FormatZPL, false, []string{"<?zpl", `trackTitle="Needles &amp; Pins"`, `duration="201000"`, `content="3"`}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := NewCreator(tt.format, tt.extended).Create("Toxicity & More", testEntries())
			for _, want := range tt.contains {
				if !strings.Contains(content, want) {
					t.Errorf("missing %q in:\n%s", want, content)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(content, bad) {
					t.Errorf("unexpected %q in:\n%s", bad, content)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"wpl", FormatWPL, ".wpl"},
		{"zpl", FormatZPL, ".zpl"},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want || got.Extension() != tt.ext {
			t.Errorf("ParseFormat(%q) = %v (%s), %v", tt.in, got, got.Extension(), err)
		}
	}
	if _, err := ParseFormat("xspf"); err == nil {
		t.Error("ParseFormat(xspf) should fail")
	}
}

const flacList = `<?xml version="1.0"?><playlist><track>C:\Music\A\01.flac</track><track>C:\Music\A\02.flac</track></playlist>`

func playlistTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Playlists")
	files := map[string]string{
		"rock.xml":        flacList,
		"sub/jazz.xml":    flacList,
		"mp3only.xml":     `<playlist><track>01.mp3</track></playlist>`,
		"notes.txt":       "see 01.flac",
		".hidden/old.xml": flacList,
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestFindFLACPlaylists(t *testing.T) {
	root := playlistTree(t)

	got, err := FindFLACPlaylists(context.Background(), root)
	if err != nil {
		t.Fatalf("FindFLACPlaylists: %v", err)
	}
	want := []string{filepath.Join(root, "rock.xml"), filepath.Join(root, "sub", "jazz.xml")}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRewriteFLACPlaylists_Copy(t *testing.T) {
	root := playlistTree(t)

	edited, err := RewriteFLACPlaylists(context.Background(), root, false)
	if err != nil {
		t.Fatalf("RewriteFLACPlaylists: %v", err)
	}
	if len(edited) != 2 {
		t.Fatalf("edited %v, want 2 files", edited)
	}
	for _, path := range edited {
		if !strings.HasPrefix(path, root+" (edited)") {
			t.Errorf("edited %s outside the copy", path)
		}
		data, _ := os.ReadFile(path)
		if strings.Contains(string(data), ".flac") || !strings.Contains(string(data), `A\02.mp3`) {
			t.Errorf("%s not rewritten: %s", path, data)
		}
	}
	if data, _ := os.ReadFile(filepath.Join(root, "rock.xml")); string(data) != flacList {
		t.Error("original playlist modified")
	}

	if _, err := RewriteFLACPlaylists(context.Background(), root, false); !errors.Is(err, fs.ErrExist) {
		t.Errorf("second copy error = %v, want fs.ErrExist", err)
	}
}

func TestRewriteFLACPlaylists_InPlace(t *testing.T) {
	root := playlistTree(t)

	edited, err := RewriteFLACPlaylists(context.Background(), root, true)
	if err != nil {
		t.Fatalf("RewriteFLACPlaylists: %v", err)
	}
	if len(edited) != 2 || edited[0] != filepath.Join(root, "rock.xml") {
		t.Fatalf("edited = %v", edited)
	}
	if data, _ := os.ReadFile(filepath.Join(root, "notes.txt")); string(data) != "see 01.flac" {
		t.Error("non-playlist file rewritten")
	}
	if _, err := os.Stat(root + " (edited)"); !errors.Is(err, fs.ErrNotExist) {
		t.Error("in-place rewrite created a copy")
	}
}
