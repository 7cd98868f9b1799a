package tagstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"github.com/handiism/audiotagtools/internal/model"
)

// multiValueSep joins repeated Vorbis comment keys into one scalar value.
const multiValueSep = ";"

// FLACStore is the Store for FLAC files.
type FLACStore struct {
	path     string
	file     *flac.File
	comments *flacvorbis.MetaDataBlockVorbisComment
	pictures []*flacpicture.MetadataBlockPicture
}

// OpenFLAC parses the metadata blocks of path.
func OpenFLAC(path string) (*FLACStore, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac %q: %w", path, err)
	}

	s := &FLACStore{path: path, file: f}
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			if s.comments != nil {
				continue
			}
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, fmt.Errorf("parse vorbis comment in %q: %w", path, err)
			}
			s.comments = cmt
		case flac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, fmt.Errorf("parse picture in %q: %w", path, err)
			}
			s.pictures = append(s.pictures, pic)
		}
	}
	if s.comments == nil {
		s.comments = flacvorbis.New()
	}
	return s, nil
}

// Path implements Store.
func (s *FLACStore) Path() string { return s.path }

// Get implements Store.
func (s *FLACStore) Get(field string) string {
	var values []string
	for _, c := range s.comments.Comments {
		key, value, ok := strings.Cut(c, "=")
		if ok && strings.EqualFold(key, field) {
			values = append(values, value)
		}
	}
	return strings.Join(values, multiValueSep)
}

// Set implements Store.
func (s *FLACStore) Set(field, value string) {
	kept := s.comments.Comments[:0]
	for _, c := range s.comments.Comments {
		key, _, _ := strings.Cut(c, "=")
		if !strings.EqualFold(key, field) {
			kept = append(kept, c)
		}
	}
	s.comments.Comments = kept
	if value != "" {
		s.comments.Comments = append(s.comments.Comments, strings.ToUpper(field)+"="+value)
	}
}

// Fields implements Store.
func (s *FLACStore) Fields() map[string]string {
	grouped := make(map[string][]string)
	var order []string
	for _, c := range s.comments.Comments {
		key, value, ok := strings.Cut(c, "=")
		if !ok || value == "" {
			continue
		}
		key = strings.ToLower(key)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], value)
	}
	sort.Strings(order)

	fields := make(map[string]string, len(order))
	for _, key := range order {
		fields[key] = strings.Join(grouped[key], multiValueSep)
	}
	return fields
}

// Pictures implements Store.
func (s *FLACStore) Pictures() []model.Artwork {
	pics := make([]model.Artwork, 0, len(s.pictures))
	for _, p := range s.pictures {
		pics = append(pics, model.Artwork{
			MIMEType:    p.MIME,
			PictureType: byte(p.PictureType),
			Description: p.Description,
			Data:        p.ImageData,
		})
	}
	return pics
}

// SetPicture implements Store.
func (s *FLACStore) SetPicture(art model.Artwork) {
	s.pictures = []*flacpicture.MetadataBlockPicture{{
		PictureType: flacpicture.PictureType(art.PictureType),
		MIME:        art.MIMEType,
		Description: art.Description,
		ImageData:   art.Data,
	}}
}

// Save implements Store. Vorbis comment and picture blocks are rebuilt;
// every other block keeps its position.
func (s *FLACStore) Save() error {
	var meta []*flac.MetaDataBlock
	wroteComments := false
	for _, block := range s.file.Meta {
		switch block.Type {
		case flac.VorbisComment:
			if !wroteComments {
				cmt := s.comments.Marshal()
				meta = append(meta, &cmt)
				wroteComments = true
			}
		case flac.Picture, flac.Padding:
		default:
			meta = append(meta, block)
		}
	}
	if !wroteComments {
		cmt := s.comments.Marshal()
		meta = append(meta, &cmt)
	}
	for _, p := range s.pictures {
		pic := p.Marshal()
		meta = append(meta, &pic)
	}

	s.file.Meta = meta
	if err := s.file.Save(s.path); err != nil {
		return fmt.Errorf("save flac %q: %w", s.path, err)
	}
	return nil
}

// Close implements Store. FLAC files are read fully on open, so there is
// nothing to release.
func (s *FLACStore) Close() error { return nil }
