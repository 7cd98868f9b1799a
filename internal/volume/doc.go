// Package volume raises or lowers the volume of every MP3 in a directory.
//
// Files are re-encoded through the codec engine with a volume filter and
// keep their ID3 tags. Unless editing in place, results go to
// "<dir> (edited)" together with a description.txt:
//
//	adj := volume.NewAdjuster(codec.NewFFmpeg(""), sink)
//	res, err := adj.Adjust(ctx, "/music/Quiet Album", volume.Options{GainDB: 10})
//	// res.Output == "/music/Quiet Album (edited)"
package volume
