// Package convert transcodes directories of FLAC files to MP3 and places
// the results.
//
// The Manager follows a scan, convert, reorganize cycle:
//
//	m, err := convert.NewManager(settings, codec.NewFFmpeg(settings.Paths.FFmpeg), sink)
//	if err := m.Initialize(ctx, "/music"); err != nil {
//	    return err
//	}
//	results, err := m.Start(ctx)
//
// # Per Directory
//
// Every FLAC file directly inside a directory is encoded into the staging
// directory "<dir> (converted)" by up to Workers concurrent encoders. Tags
// (except the "Cover (front)" comment) and the first embedded picture are
// copied into an ID3v2.3 tag. Once every file has finished, the directory
// is reorganized according to in_place and delete_originals.
//
// # Failures
//
// A failing file is retried MaxRetries times with exponential backoff.
// Then the failure policy applies:
//   - skip: the failure is recorded, the other files continue and the
//     directory is left degraded: staging is kept and the originals are
//     not touched.
//   - abort: the directory's remaining files are not attempted and the
//     run moves on to the next directory.
//
// Directories are processed one at a time, in path order.
package convert
