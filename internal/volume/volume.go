package volume

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/events"
	ioutils "github.com/handiism/audiotagtools/internal/io"
	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/scan"
	"github.com/handiism/audiotagtools/internal/tagstore"
)

// DescriptionFile is written next to the adjusted files.
const DescriptionFile = "description.txt"

// ErrNoFiles is returned when a directory holds no MP3 files.
var ErrNoFiles = errors.New("no MP3 files found")

// Options configures one adjustment.
type Options struct {
	// GainDB is positive to increase volume and negative to decrease it.
	GainDB  float64
	InPlace bool
	// Bitrate in kbps; invalid values fall back to the default.
	Bitrate int
}

// Result describes a finished adjustment.
type Result struct {
	Dir    string
	Output string
	Files  []string
	GainDB float64
}

// Adjuster re-encodes MP3s with a gain.
type Adjuster struct {
	events.Emitter
	encoder codec.Encoder
}

// NewAdjuster creates an Adjuster.
func NewAdjuster(encoder codec.Encoder, sink events.Sink) *Adjuster {
	return &Adjuster{Emitter: events.Emitter{Sink: sink}, encoder: encoder}
}

// Adjust applies opts.GainDB to every MP3 directly inside dir. An existing
// output directory is reused and its files replaced.
func (a *Adjuster) Adjust(ctx context.Context, dir string, opts Options) (*Result, error) {
	if err := model.CheckDir(dir); err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	match := scan.Extension("mp3")
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := match(filepath.Join(dir, e.Name()), e); ok {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	res := &Result{Dir: dir, Output: dir, GainDB: opts.GainDB}
	if !opts.InPlace {
		res.Output = model.EditedPath(dir)
	}
	if err := ioutils.EnsureDir(res.Output); err != nil {
		return nil, err
	}
	a.Emit(events.Event{Message: describeGain(opts.GainDB), Level: events.LevelVerbose, Dir: dir})

	bitrate := codec.ResolveBitrate(opts.Bitrate)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		a.Emit(events.Event{Message: "Processing " + name, Level: events.LevelVerbose, Dir: dir, File: name})
		if err := a.adjustFile(ctx, filepath.Join(dir, name), filepath.Join(res.Output, name), bitrate, opts.GainDB); err != nil {
			a.Emit(events.Event{Message: fmt.Sprintf("Failed to adjust %s", name), Level: events.LevelError, Dir: dir, File: name, Err: err})
			return res, fmt.Errorf("adjust %s: %w", name, err)
		}
		res.Files = append(res.Files, name)
	}

	desc := Description(len(res.Files), opts.GainDB)
	if err := ioutils.WriteFile(ctx, filepath.Join(res.Output, DescriptionFile), []byte(desc)); err != nil {
		return res, err
	}
	a.Emit(events.Event{Message: desc, Level: events.LevelSuccess, Dir: res.Output})
	return res, nil
}

// adjustFile encodes to a hidden temporary next to dst so an in-place
// run never reads and writes the same file.
func (a *Adjuster) adjustFile(ctx context.Context, src, dst string, bitrate int, gain float64) error {
	asset, err := tagstore.ReadAsset(src)
	if err != nil {
		return fmt.Errorf("read tags: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(dst), model.HiddenName(filepath.Base(dst))+".part.mp3")
	req := codec.Request{Source: src, Output: tmp, Codec: codec.MP3, Bitrate: bitrate, GainDB: gain}
	if err := a.encoder.Encode(ctx, req); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := tagstore.Transfer(asset, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

// Description is the text of description.txt.
//
// Example:
//
//	Description(3, -6) // "Volume adjusted for 3 files. Volume decreased by 6 dB."
func Description(n int, gain float64) string {
	msg := fmt.Sprintf("Volume adjusted for %d files.", n)
	switch {
	case gain == 0:
		return msg + " No volume edits."
	case gain > 0:
		return msg + " Volume increased by " + formatDB(gain) + " dB."
	}
	return msg + " Volume decreased by " + formatDB(gain) + " dB."
}

func describeGain(gain float64) string {
	switch {
	case gain == 0:
		return "No volume adjustment."
	case gain > 0:
		return "Increasing volume of all files by " + formatDB(gain) + " dB."
	}
	return "Decreasing volume of all files by " + formatDB(gain) + " dB."
}

func formatDB(gain float64) string {
	return strconv.FormatFloat(math.Abs(gain), 'f', -1, 64)
}
