// Package tagstore reads and writes tag fields and embedded artwork of
// audio files behind one interface.
//
// Two containers are supported:
//   - MP3 via ID3v2 (github.com/bogem/id3v2)
//   - FLAC via Vorbis comments and PICTURE blocks (github.com/go-flac)
//
// Field names are canonical lower-case names (see the Field constants in
// package model). Changes stay in memory until Save is called:
//
//	store, err := tagstore.Open("/music/Album/01.mp3")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	store.Set(model.FieldGenre, "Rock|Pop")
//	err = store.Save()
package tagstore
