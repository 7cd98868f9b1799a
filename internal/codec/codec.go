package codec

import (
	"context"
	"slices"
)

// Codec describes a target format.
type Codec struct {
	Name      string
	Extension string
	Encoder   string
}

// MP3 is the LAME MP3 target.
var MP3 = Codec{Name: "mp3", Extension: ".mp3", Encoder: "libmp3lame"}

// AllowedBitrates are the accepted constant bitrates in kbps.
var AllowedBitrates = []int{128, 160, 192, 256, 320}

// DefaultBitrate replaces any bitrate outside AllowedBitrates.
const DefaultBitrate = 256

// ResolveBitrate returns kbps when it is allowed and DefaultBitrate
// otherwise.
func ResolveBitrate(kbps int) int {
	if slices.Contains(AllowedBitrates, kbps) {
		return kbps
	}
	return DefaultBitrate
}

// Request is one encode.
type Request struct {
	Source string
	Output string
	Codec  Codec

	// Bitrate in kbps. Zero keeps the encoder's default quality.
	Bitrate int

	// GainDB is applied as a volume filter when non-zero.
	GainDB float64
}

// Encoder converts one file.
type Encoder interface {
	Encode(ctx context.Context, req Request) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, req Request) error

// Encode calls f.
func (f EncoderFunc) Encode(ctx context.Context, req Request) error { return f(ctx, req) }
