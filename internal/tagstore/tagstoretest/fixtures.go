// Package tagstoretest builds small audio fixtures for tests.
//
// The files carry real tag containers (ID3v2, FLAC metadata blocks) around
// placeholder audio payloads, which is all the tag stores look at.
package tagstoretest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"github.com/handiism/audiotagtools/internal/model"
)

// Payload stands in for encoded audio frames.
var Payload = []byte("\xff\xfb\x90\x64 not really audio")

// PNG returns a tiny valid PNG image.
func PNG(tb testing.TB) []byte {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatal(err)
	}
	return buf.Bytes()
}

// Cover returns a front-cover artwork holding a PNG.
func Cover(tb testing.TB) model.Artwork {
	return model.Artwork{
		MIMEType:    "image/png",
		PictureType: model.PictureTypeFrontCover,
		Description: "front",
		Data:        PNG(tb),
	}
}

// WriteFLAC writes a FLAC file with the given Vorbis comments and
// optional pictures. Keys are written upper-case.
func WriteFLAC(tb testing.TB, path string, tags map[string]string, pictures ...model.Artwork) {
	tb.Helper()
	mkdirFor(tb, path)

	cmt := flacvorbis.New()
	for _, key := range sortedKeys(tags) {
		if err := cmt.Add(strings.ToUpper(key), tags[key]); err != nil {
			tb.Fatal(err)
		}
	}
	cmtBlock := cmt.Marshal()

	f := &flac.File{
		Meta: []*flac.MetaDataBlock{
			{Type: flac.StreamInfo, Data: make([]byte, 34)},
			&cmtBlock,
		},
		Frames: flac.FrameData(Payload),
	}
	for _, art := range pictures {
		pic := &flacpicture.MetadataBlockPicture{
			PictureType: flacpicture.PictureType(art.PictureType),
			MIME:        art.MIMEType,
			Description: art.Description,
			ImageData:   art.Data,
		}
		block := pic.Marshal()
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(path); err != nil {
		tb.Fatal(err)
	}
}

// WriteMP3 writes a payload with an ID3v2.4 tag holding the given text
// frames, keyed by canonical field name (artist, composer, genre, title).
func WriteMP3(tb testing.TB, path string, tags map[string]string) {
	tb.Helper()
	mkdirFor(tb, path)
	if err := os.WriteFile(path, Payload, 0644); err != nil {
		tb.Fatal(err)
	}
	if len(tags) == 0 {
		return
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		tb.Fatal(err)
	}
	defer tag.Close()
	ids := map[string]string{
		model.FieldArtist:   "TPE1",
		model.FieldComposer: "TCOM",
		model.FieldGenre:    "TCON",
		model.FieldTitle:    "TIT2",
		model.FieldAlbum:    "TALB",
	}
	for _, field := range sortedKeys(tags) {
		id, ok := ids[field]
		if !ok {
			tb.Fatalf("WriteMP3: unsupported fixture field %q", field)
		}
		tag.AddTextFrame(id, id3v2.EncodingUTF8, tags[field])
	}
	if err := tag.Save(); err != nil {
		tb.Fatal(err)
	}
}

// ReadID3 returns the text of frame id in path's tag and the tag version.
func ReadID3(tb testing.TB, path, id string) (string, byte) {
	tb.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		tb.Fatal(err)
	}
	defer tag.Close()
	return tag.GetTextFrame(id).Text, tag.Version()
}

func mkdirFor(tb testing.TB, path string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tb.Fatal(err)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
