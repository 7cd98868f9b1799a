// Package playlist creates playlists for converted directories and
// repoints existing FLAC playlists at their MP3 conversions.
//
// # Creating Playlists
//
//	creator := playlist.NewCreator(playlist.FormatM3U, true)
//	content := creator.Create("Toxicity", entries)
//	os.WriteFile(filepath.Join(dir, "Toxicity"+playlist.FormatM3U.Extension()), []byte(content), 0644)
//
// Supported formats: M3U (optionally extended), PLS, WPL and ZPL.
//
// # FLAC Playlists
//
// Media player libraries often keep XML playlists pointing at .flac
// files. After a library is converted they can be rewritten:
//
//	lists, _ := playlist.FindFLACPlaylists(ctx, "/music/Playlists")
//	edited, err := playlist.RewriteFLACPlaylists(ctx, "/music/Playlists", false)
//	// copies the tree to "/music/Playlists (edited)" and edits the copy
package playlist
