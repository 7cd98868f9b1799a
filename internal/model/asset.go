package model

import (
	"path/filepath"
	"strings"
)

// Canonical tag field names.
const (
	FieldArtist      = "artist"
	FieldAlbumArtist = "albumartist"
	FieldAlbum       = "album"
	FieldTitle       = "title"
	FieldComposer    = "composer"
	FieldGenre       = "genre"
	FieldDate        = "date"
	FieldTrackNumber = "tracknumber"
	FieldDiscNumber  = "discnumber"
	FieldComment     = "comment"
)

// CoverSentinel is the comment value some rippers write to mark embedded
// cover art. It is never carried over to converted files.
const CoverSentinel = "Cover (front)"

// PictureTypeFrontCover is the APIC / FLAC picture type for a front cover.
const PictureTypeFrontCover byte = 3

// MusicDirectory is a directory holding at least one file that matched a
// scan predicate.
type MusicDirectory struct {
	// Path is absolute.
	Path string

	// Files are the base names of matching files, sorted.
	Files []string
}

// FilePaths returns the absolute paths of the matching files.
func (d MusicDirectory) FilePaths() []string {
	paths := make([]string, len(d.Files))
	for i, name := range d.Files {
		paths[i] = filepath.Join(d.Path, name)
	}
	return paths
}

// Artwork is one embedded picture.
type Artwork struct {
	MIMEType    string
	PictureType byte
	Description string
	Data        []byte
}

// AudioAsset is the metadata view of one audio file.
type AudioAsset struct {
	Path    string
	Tags    map[string]string
	Artwork []Artwork
}

// FirstArtwork returns the first embedded picture, if any.
func (a *AudioAsset) FirstArtwork() (Artwork, bool) {
	if len(a.Artwork) == 0 {
		return Artwork{}, false
	}
	return a.Artwork[0], true
}

// TransferableTags returns a copy of the scalar tags without the cover
// sentinel comment.
func (a *AudioAsset) TransferableTags() map[string]string {
	out := make(map[string]string, len(a.Tags))
	for k, v := range a.Tags {
		if k == FieldComment && v == CoverSentinel {
			continue
		}
		out[k] = v
	}
	return out
}

// ConversionJob is one asset scheduled for transcoding.
type ConversionJob struct {
	Source  string
	Output  string
	Codec   string
	Bitrate int
}

// StagingPath returns the staging directory used while converting src.
func StagingPath(src string) string {
	return siblingWithSuffix(src, " (converted)", "converted")
}

// EditedPath returns the output directory used by copy-then-edit
// operations (volume, playlist rewrite) that do not run in place.
func EditedPath(src string) string {
	return siblingWithSuffix(src, " (edited)", "edited")
}

func siblingWithSuffix(src, suffix, fallback string) string {
	src = filepath.Clean(src)
	parent, name := filepath.Split(src)
	if name == "" {
		return filepath.Join(parent, fallback)
	}
	return filepath.Join(parent, name+suffix)
}

// HiddenName returns name with exactly one leading dot.
func HiddenName(name string) string {
	return "." + strings.TrimLeft(name, ".")
}

// ReplaceExt swaps the extension of a file name. ext may be given with or
// without the leading dot.
func ReplaceExt(name, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// HasExt reports whether name ends in ext, ignoring case.
func HasExt(name, ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}
