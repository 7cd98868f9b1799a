package tagstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/audiotagtools/internal/model"
)

// Store is the tag view of one audio file.
type Store interface {
	// Path returns the file the store was opened from.
	Path() string

	// Get returns the value of a field, or "" when unset.
	Get(field string) string

	// Set replaces a field. An empty value removes it.
	Set(field, value string)

	// Fields returns every scalar field that has a value.
	Fields() map[string]string

	// Pictures returns the embedded pictures in file order.
	Pictures() []model.Artwork

	// SetPicture replaces all embedded pictures with art.
	SetPicture(art model.Artwork)

	// Save persists pending changes to the file.
	Save() error

	// Close releases the file. Unsaved changes are discarded.
	Close() error
}

// ID3Version is the tag version written to converted files.
const ID3Version = 3

// Open returns the store matching the file's extension.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return OpenID3(path)
	case ".flac":
		return OpenFLAC(path)
	}
	return nil, fmt.Errorf("no tag store for %q", filepath.Base(path))
}

// Supported reports whether Open can handle path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return true
	}
	return false
}

// ReadAsset loads the tags and artwork of path.
func ReadAsset(path string) (*model.AudioAsset, error) {
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return &model.AudioAsset{
		Path:    path,
		Tags:    store.Fields(),
		Artwork: store.Pictures(),
	}, nil
}

// Transfer writes the transferable tags of asset and its first picture to
// dst. ID3 destinations are saved as ID3v2.3.
func Transfer(asset *model.AudioAsset, dst string) error {
	store, err := Open(dst)
	if err != nil {
		return err
	}
	defer store.Close()

	// The version picks the text encoding, so it is set before any frame.
	if id3, ok := store.(*ID3Store); ok {
		id3.SetVersion(ID3Version)
	}
	for field, value := range asset.TransferableTags() {
		store.Set(field, value)
	}
	if art, ok := asset.FirstArtwork(); ok {
		store.SetPicture(art)
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("save tags to %q: %w", dst, err)
	}
	return nil
}
