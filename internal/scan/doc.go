// Package scan finds directories holding audio or playlist files.
//
// Scanning is a pure function of the filesystem: nothing is cached and
// results are sorted so repeated scans over the same tree agree.
//
//	dirs, err := scan.FindMusicDirs(ctx, "/music", scan.Extension("flac"))
//	playlists, err := scan.FindFiles(ctx, "/music", scan.Contains("xml", ".flac"))
//
// Hidden directories (a name starting with ".") are pruned with their
// whole subtree, which keeps archive directories left by a previous
// conversion out of later scans.
package scan
