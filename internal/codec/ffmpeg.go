package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpeg runs the ffmpeg binary.
type FFmpeg struct {
	// Binary is the executable name or path.
	Binary string

	// Stderr, when set, receives ffmpeg's stderr as it is produced.
	Stderr io.Writer
}

// NewFFmpeg returns an encoder running binary, or "ffmpeg" from PATH.
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary}
}

// ExecError is a failed ffmpeg invocation.
type ExecError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if tail := lastLine(e.Stderr); tail != "" {
		return fmt.Sprintf("ffmpeg: %v: %s", e.Err, tail)
	}
	return fmt.Sprintf("ffmpeg: %v", e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Args compiles the command line for req, without the binary.
func (f *FFmpeg) Args(req Request) []string {
	out := ffmpeg.KwArgs{
		"hide_banner":  "",
		"loglevel":     "error",
		"map_metadata": "-1",
		"vn":           "",
	}
	if req.Codec.Encoder != "" {
		out["c:a"] = req.Codec.Encoder
	}
	if req.Bitrate > 0 {
		out["b:a"] = strconv.Itoa(req.Bitrate) + "k"
	}
	if req.Codec == MP3 {
		out["id3v2_version"] = "3"
	}
	if req.GainDB != 0 {
		out["af"] = "volume=" + strconv.FormatFloat(req.GainDB, 'f', -1, 64) + "dB"
	}

	return ffmpeg.Input(req.Source).
		Output(req.Output, out).
		OverWriteOutput().
		GetArgs()
}

// Encode implements Encoder. A failed or cancelled run removes the
// partial output.
func (f *FFmpeg) Encode(ctx context.Context, req Request) error {
	args := f.Args(req)
	cmd := exec.CommandContext(ctx, f.Binary, args...)

	var stderr bytes.Buffer
	if f.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, f.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		_ = os.Remove(req.Output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ExecError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// Available reports whether the binary can be found.
func (f *FFmpeg) Available() error {
	if _, err := exec.LookPath(f.Binary); err != nil {
		return fmt.Errorf("ffmpeg binary %q: %w", f.Binary, err)
	}
	return nil
}

// IsExecError reports whether err came from a failed ffmpeg run.
func IsExecError(err error) bool {
	var ee *ExecError
	return errors.As(err, &ee)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
