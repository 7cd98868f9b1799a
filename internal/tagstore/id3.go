package tagstore

import (
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/audiotagtools/internal/model"
)

// id3Frames maps canonical field names to ID3v2 text frame IDs. Fields
// missing here are stored in TXXX frames.
var id3Frames = map[string]string{
	model.FieldArtist:      "TPE1",
	model.FieldAlbumArtist: "TPE2",
	model.FieldAlbum:       "TALB",
	model.FieldTitle:       "TIT2",
	model.FieldComposer:    "TCOM",
	model.FieldGenre:       "TCON",
	model.FieldTrackNumber: "TRCK",
	model.FieldDiscNumber:  "TPOS",
	"bpm":                  "TBPM",
	"conductor":            "TPE3",
	"copyright":            "TCOP",
	"encodedby":            "TENC",
	"grouping":             "TIT1",
	"isrc":                 "TSRC",
	"lyricist":             "TEXT",
	"organization":         "TPUB",
	"subtitle":             "TIT3",
}

const (
	frameComment     = "COMM"
	framePicture     = "APIC"
	frameUserText    = "TXXX"
	frameYear        = "TYER"
	frameRecordingTS = "TDRC"
)

// ID3Store is the Store for MP3 files.
type ID3Store struct {
	path string
	tag  *id3v2.Tag
}

// OpenID3 parses the ID3 tag of path. Files without a tag get an empty one.
func OpenID3(path string) (*ID3Store, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	return &ID3Store{path: path, tag: tag}, nil
}

// Path implements Store.
func (s *ID3Store) Path() string { return s.path }

// SetVersion sets the ID3v2 major version used by Save.
func (s *ID3Store) SetVersion(version byte) {
	s.tag.SetVersion(version)
}

// Version returns the ID3v2 major version of the tag.
func (s *ID3Store) Version() byte { return s.tag.Version() }

func (s *ID3Store) encoding() id3v2.Encoding {
	// ID3v2.3 predates UTF-8 support.
	if s.tag.Version() < 4 {
		return id3v2.EncodingUTF16
	}
	return id3v2.EncodingUTF8
}

// Get implements Store.
func (s *ID3Store) Get(field string) string {
	field = strings.ToLower(field)
	switch field {
	case model.FieldComment:
		for _, f := range s.tag.GetFrames(frameComment) {
			if c, ok := f.(id3v2.CommentFrame); ok {
				return c.Text
			}
		}
		return ""
	case model.FieldDate:
		if v := s.tag.GetTextFrame(frameRecordingTS).Text; v != "" {
			return v
		}
		return s.tag.GetTextFrame(frameYear).Text
	}
	if id, ok := id3Frames[field]; ok {
		return s.tag.GetTextFrame(id).Text
	}
	for _, f := range s.tag.GetFrames(frameUserText) {
		if u, ok := f.(id3v2.UserDefinedTextFrame); ok && strings.EqualFold(u.Description, field) {
			return u.Value
		}
	}
	return ""
}

// Set implements Store.
func (s *ID3Store) Set(field, value string) {
	field = strings.ToLower(field)
	switch field {
	case model.FieldComment:
		s.tag.DeleteFrames(frameComment)
		if value != "" {
			s.tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding: s.encoding(),
				Language: "eng",
				Text:     value,
			})
		}
		return
	case model.FieldDate:
		s.tag.DeleteFrames(frameYear)
		s.tag.DeleteFrames(frameRecordingTS)
		if value == "" {
			return
		}
		if s.tag.Version() < 4 {
			s.tag.AddTextFrame(frameYear, s.encoding(), value)
		} else {
			s.tag.AddTextFrame(frameRecordingTS, s.encoding(), value)
		}
		return
	}

	if id, ok := id3Frames[field]; ok {
		if value == "" {
			s.tag.DeleteFrames(id)
			return
		}
		s.tag.AddTextFrame(id, s.encoding(), value)
		return
	}
	s.setUserText(field, value)
}

// setUserText rewrites the TXXX frames, replacing the one for field.
func (s *ID3Store) setUserText(field, value string) {
	var keep []id3v2.UserDefinedTextFrame
	for _, f := range s.tag.GetFrames(frameUserText) {
		if u, ok := f.(id3v2.UserDefinedTextFrame); ok && !strings.EqualFold(u.Description, field) {
			keep = append(keep, u)
		}
	}
	s.tag.DeleteFrames(frameUserText)
	for _, u := range keep {
		s.tag.AddUserDefinedTextFrame(u)
	}
	if value != "" {
		s.tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    s.encoding(),
			Description: strings.ToUpper(field),
			Value:       value,
		})
	}
}

// Fields implements Store.
func (s *ID3Store) Fields() map[string]string {
	fields := make(map[string]string)
	for field, id := range id3Frames {
		if v := s.tag.GetTextFrame(id).Text; v != "" {
			fields[field] = v
		}
	}
	if v := s.Get(model.FieldDate); v != "" {
		fields[model.FieldDate] = v
	}
	if v := s.Get(model.FieldComment); v != "" {
		fields[model.FieldComment] = v
	}
	for _, f := range s.tag.GetFrames(frameUserText) {
		if u, ok := f.(id3v2.UserDefinedTextFrame); ok && u.Value != "" {
			fields[strings.ToLower(u.Description)] = u.Value
		}
	}
	return fields
}

// Pictures implements Store.
func (s *ID3Store) Pictures() []model.Artwork {
	var pics []model.Artwork
	for _, f := range s.tag.GetFrames(framePicture) {
		pf, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		pics = append(pics, model.Artwork{
			MIMEType:    pf.MimeType,
			PictureType: pf.PictureType,
			Description: pf.Description,
			Data:        pf.Picture,
		})
	}
	return pics
}

// SetPicture implements Store.
func (s *ID3Store) SetPicture(art model.Artwork) {
	s.tag.DeleteFrames(framePicture)
	s.tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingISO,
		MimeType:    art.MIMEType,
		PictureType: art.PictureType,
		Description: art.Description,
		Picture:     art.Data,
	})
}

// Save implements Store.
func (s *ID3Store) Save() error {
	return s.tag.Save()
}

// Close implements Store.
func (s *ID3Store) Close() error {
	return s.tag.Close()
}
