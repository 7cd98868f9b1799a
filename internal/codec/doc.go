// Package codec wraps the external encoder used to transcode audio.
//
// Arguments are compiled with github.com/u2takey/ffmpeg-go and the ffmpeg
// binary runs under exec.CommandContext, so cancelling the context kills
// an in-flight encode. Decoding and encoding happen in the same process;
// tags and artwork are written afterwards by package tagstore, which is
// why the encoder strips metadata and picture streams.
//
//	enc := codec.NewFFmpeg("ffmpeg")
//	err := enc.Encode(ctx, codec.Request{
//	    Source:  "/music/Album/01.flac",
//	    Output:  "/music/Album (converted)/01.mp3",
//	    Codec:   codec.MP3,
//	    Bitrate: codec.ResolveBitrate(320),
//	})
package codec
