// Command audiotag converts FLAC libraries to MP3, normalizes multipart tags
// and carries the smaller library chores around them: volume adjustment,
// playlist rewriting, cover resizing and MusicBrainz lookups.
//
// Usage:
//
//	audiotag [--config PATH] [-v] <command>
//
// Every mutating command records a run in the journal under the state
// directory; `audiotag history` lists them.
package main
