package volume

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/tagstore/tagstoretest"
)

// gainEncoder writes the audio payload followed by the requested gain so
// tests can tell adjusted files apart.
type gainEncoder struct {
	mu       sync.Mutex
	requests []codec.Request
	fail     string
}

func (g *gainEncoder) Encode(_ context.Context, req codec.Request) error {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if filepath.Base(req.Source) == g.fail {
		return errors.New("encoder exploded")
	}
	out := append(append([]byte{}, tagstoretest.Payload...), []byte(formatDB(req.GainDB))...)
	return os.WriteFile(req.Output, out, 0644)
}

func album(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Quiet")
	tagstoretest.WriteMP3(t, filepath.Join(dir, "01.mp3"), map[string]string{
		model.FieldArtist: "Low",
		model.FieldTitle:  "Words",
	})
	tagstoretest.WriteMP3(t, filepath.Join(dir, "02.MP3"), map[string]string{
		model.FieldArtist: "Low",
		model.FieldTitle:  "Fearless",
	})
	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("jpg"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDescription(t *testing.T) {
	tests := []struct {
		n    int
		gain float64
		want string
	}{
		{3, 0, "Volume adjusted for 3 files. No volume edits."},
		{2, 10, "Volume adjusted for 2 files. Volume increased by 10 dB."},
		{1, -6.5, "Volume adjusted for 1 files. Volume decreased by 6.5 dB."},
	}
	for _, tt := range tests {
		if got := Description(tt.n, tt.gain); got != tt.want {
			t.Errorf("Description(%d, %v) = %q, want %q", tt.n, tt.gain, got, tt.want)
		}
	}
}

func TestAdjust_ToEditedCopy(t *testing.T) {
	dir := album(t)
	enc := &gainEncoder{}
	original, _ := os.ReadFile(filepath.Join(dir, "01.mp3"))

	res, err := NewAdjuster(enc, nil).Adjust(context.Background(), dir, Options{GainDB: 10, Bitrate: 7})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if res.Output != dir+" (edited)" {
		t.Fatalf("Output = %q", res.Output)
	}
	if len(res.Files) != 2 {
		t.Fatalf("Files = %v", res.Files)
	}
	for _, req := range enc.requests {
		if req.GainDB != 10 || req.Bitrate != codec.DefaultBitrate || req.Codec != codec.MP3 {
			t.Errorf("request = %+v", req)
		}
	}

	out := filepath.Join(res.Output, "01.mp3")
	if title, version := tagstoretest.ReadID3(t, out, "TIT2"); title != "Words" || version != 3 {
		t.Errorf("tags = %q v2.%d, want Words v2.3", title, version)
	}
	data, _ := os.ReadFile(out)
	if !bytes.HasSuffix(data, []byte("10")) {
		t.Error("output was not produced by the encoder")
	}
	if after, _ := os.ReadFile(filepath.Join(dir, "01.mp3")); !bytes.Equal(after, original) {
		t.Error("source modified")
	}
	desc, _ := os.ReadFile(filepath.Join(res.Output, DescriptionFile))
	if string(desc) != "Volume adjusted for 2 files. Volume increased by 10 dB." {
		t.Errorf("description = %q", desc)
	}
	leftovers, _ := filepath.Glob(filepath.Join(res.Output, ".*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left: %v", leftovers)
	}
}

func TestAdjust_InPlace(t *testing.T) {
	dir := album(t)

	res, err := NewAdjuster(&gainEncoder{}, nil).Adjust(context.Background(), dir, Options{GainDB: -3, InPlace: true})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if res.Output != dir {
		t.Errorf("Output = %q, want %q", res.Output, dir)
	}
	if artist, _ := tagstoretest.ReadID3(t, filepath.Join(dir, "02.MP3"), "TPE1"); artist != "Low" {
		t.Errorf("artist = %q", artist)
	}
	if _, err := os.Stat(dir + " (edited)"); err == nil {
		t.Error("in-place run created an edited copy")
	}
	desc, _ := os.ReadFile(filepath.Join(dir, DescriptionFile))
	if string(desc) != "Volume adjusted for 2 files. Volume decreased by 3 dB." {
		t.Errorf("description = %q", desc)
	}
}

func TestAdjust_Errors(t *testing.T) {
	empty := t.TempDir()
	if _, err := NewAdjuster(&gainEncoder{}, nil).Adjust(context.Background(), empty, Options{}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("empty dir error = %v, want ErrNoFiles", err)
	}
	if _, err := NewAdjuster(&gainEncoder{}, nil).Adjust(context.Background(), filepath.Join(empty, "missing"), Options{}); !errors.Is(err, model.ErrInvalidPath) {
		t.Errorf("missing dir error = %v, want ErrInvalidPath", err)
	}

	dir := album(t)
	res, err := NewAdjuster(&gainEncoder{fail: "02.MP3"}, nil).Adjust(context.Background(), dir, Options{GainDB: 1})
	if err == nil {
		t.Fatal("encoder failure not reported")
	}
	if len(res.Files) != 1 {
		t.Errorf("Files = %v, want only 01.mp3", res.Files)
	}
	if _, err := os.Stat(filepath.Join(res.Output, DescriptionFile)); err == nil {
		t.Error("description written for a failed run")
	}
}
