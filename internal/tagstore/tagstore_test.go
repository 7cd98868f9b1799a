package tagstore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/audiotagtools/internal/model"
	"github.com/handiism/audiotagtools/internal/tagstore/tagstoretest"
)

func TestFLACStore_ReadFieldsAndPictures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	cover := tagstoretest.Cover(t)
	tagstoretest.WriteFLAC(t, path, map[string]string{
		"artist":  "Boston",
		"title":   "More Than a Feeling",
		"comment": model.CoverSentinel,
	}, cover)

	store, err := OpenFLAC(path)
	if err != nil {
		t.Fatalf("OpenFLAC: %v", err)
	}
	defer store.Close()

	if got := store.Get("ARTIST"); got != "Boston" {
		t.Errorf("Get(ARTIST) = %q, want %q", got, "Boston")
	}
	fields := store.Fields()
	if fields[model.FieldTitle] != "More Than a Feeling" {
		t.Errorf("fields[title] = %q", fields[model.FieldTitle])
	}
	if fields[model.FieldComment] != model.CoverSentinel {
		t.Errorf("fields[comment] = %q, want sentinel", fields[model.FieldComment])
	}

	pics := store.Pictures()
	if len(pics) != 1 {
		t.Fatalf("len(Pictures) = %d, want 1", len(pics))
	}
	if pics[0].MIMEType != "image/png" || pics[0].PictureType != model.PictureTypeFrontCover {
		t.Errorf("picture = %s type %d", pics[0].MIMEType, pics[0].PictureType)
	}
	if !bytes.Equal(pics[0].Data, cover.Data) {
		t.Error("picture data differs from fixture")
	}
}

func TestFLACStore_SetAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	tagstoretest.WriteFLAC(t, path, map[string]string{"genre": "rock/pop", "artist": "A"})

	store, err := OpenFLAC(path)
	if err != nil {
		t.Fatal(err)
	}
	store.Set(model.FieldGenre, "Rock|Pop")
	store.Set(model.FieldArtist, "")
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := OpenFLAC(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Get(model.FieldGenre); got != "Rock|Pop" {
		t.Errorf("genre = %q, want %q", got, "Rock|Pop")
	}
	if got := reopened.Get(model.FieldArtist); got != "" {
		t.Errorf("artist = %q, want removed", got)
	}
	if !bytes.Equal(reopened.file.Frames, tagstoretest.Payload) {
		t.Error("audio frames changed on save")
	}
}

func TestFLACStore_MultiValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	tagstoretest.WriteFLAC(t, path, nil)

	store, err := OpenFLAC(path)
	if err != nil {
		t.Fatal(err)
	}
	store.comments.Comments = append(store.comments.Comments, "ARTIST=One", "artist=Two")
	if got := store.Get(model.FieldArtist); got != "One;Two" {
		t.Errorf("Get(artist) = %q, want %q", got, "One;Two")
	}
}

func TestID3Store_Fields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.mp3")
	tagstoretest.WriteMP3(t, path, map[string]string{
		"artist":   "AWOLNATION",
		"composer": "Aaron Bruno",
		"genre":    "Alternative/Rock",
	})

	store, err := OpenID3(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	tests := []struct {
		field string
		want  string
	}{
		{model.FieldArtist, "AWOLNATION"},
		{model.FieldComposer, "Aaron Bruno"},
		{"GENRE", "Alternative/Rock"},
		{model.FieldAlbum, ""},
	}
	for _, tt := range tests {
		if got := store.Get(tt.field); got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestID3Store_SetSpecialFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.mp3")
	tagstoretest.WriteMP3(t, path, nil)

	store, err := OpenID3(path)
	if err != nil {
		t.Fatal(err)
	}
	store.SetVersion(3)
	store.Set(model.FieldComment, "ripped from vinyl")
	store.Set(model.FieldDate, "1976")
	store.Set("musicbrainz_albumid", "abc-123")
	store.Set("replaygain_track_gain", "-6.2 dB")
	store.Set("replaygain_track_gain", "")
	if err := store.Save(); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := OpenID3(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if v := reopened.Version(); v != 3 {
		t.Errorf("version = %d, want 3", v)
	}
	fields := reopened.Fields()
	want := map[string]string{
		model.FieldComment:    "ripped from vinyl",
		model.FieldDate:       "1976",
		"musicbrainz_albumid": "abc-123",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
	if _, ok := fields["replaygain_track_gain"]; ok {
		t.Error("removed TXXX field still present")
	}
	if text, _ := tagstoretest.ReadID3(t, path, "TYER"); text != "1976" {
		t.Errorf("TYER = %q, want 1976 in an ID3v2.3 tag", text)
	}
}

func TestTransfer_FLACToMP3(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "01.flac")
	dst := filepath.Join(dir, "01.mp3")
	cover := tagstoretest.Cover(t)
	second := model.Artwork{MIMEType: "image/jpeg", PictureType: 4, Data: []byte("back")}
	tagstoretest.WriteFLAC(t, src, map[string]string{
		"artist":      "Boston",
		"genre":       "Rock",
		"tracknumber": "1",
		"comment":     model.CoverSentinel,
	}, cover, second)
	if err := os.WriteFile(dst, tagstoretest.Payload, 0644); err != nil {
		t.Fatal(err)
	}

	asset, err := ReadAsset(src)
	if err != nil {
		t.Fatalf("ReadAsset: %v", err)
	}
	if err := Transfer(asset, dst); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	out, err := OpenID3(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if out.Version() != ID3Version {
		t.Errorf("version = %d, want %d", out.Version(), ID3Version)
	}
	for field, want := range map[string]string{"artist": "Boston", "genre": "Rock", "tracknumber": "1"} {
		if got := out.Get(field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	if got := out.Get(model.FieldComment); got != "" {
		t.Errorf("comment = %q, want sentinel dropped", got)
	}

	pics := out.Pictures()
	if len(pics) != 1 {
		t.Fatalf("len(pictures) = %d, want only the first", len(pics))
	}
	if pics[0].MIMEType != cover.MIMEType || pics[0].PictureType != cover.PictureType || !bytes.Equal(pics[0].Data, cover.Data) {
		t.Errorf("picture = %+v, want the front cover", pics[0].MIMEType)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	if _, err := Open("/music/notes.txt"); err == nil {
		t.Error("Open(.txt) should fail")
	}
	if Supported("a.ogg") || !Supported("A.MP3") || !Supported("b.flac") {
		t.Error("Supported gave wrong answers")
	}
}
