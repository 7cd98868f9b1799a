// Package model defines the core data structures shared by the
// audiotagtools packages.
//
// # Music Directories
//
// A MusicDirectory is a snapshot of one directory taken by the scanner:
//
//	dir := model.MusicDirectory{Path: "/music/Artist/Album", Files: []string{"01.flac", "02.flac"}}
//	for _, p := range dir.FilePaths() {
//	    fmt.Println(p)
//	}
//
// # Audio Assets
//
// AudioAsset carries the scalar tags and embedded artwork of one file.
// Tag names are canonical lower-case field names (artist, composer, genre,
// title, album, albumartist, date, tracknumber, discnumber, comment, ...)
// regardless of the underlying container.
//
// # Paths
//
// Derived locations follow fixed naming conventions:
//
//	model.StagingPath("/music/Album")  // "/music/Album (converted)"
//	model.EditedPath("/music/Album")   // "/music/Album (edited)"
//	model.HiddenName("Album")          // ".Album"
//
// # Errors
//
// errors.go holds the error taxonomy (ErrInvalidPath, ErrInvalidDelimiter,
// UnitError, TranscodeError, ErrFilesystem) and Kind for classification.
package model
