// Package encode wraps ffmpeg as the re-encode collaborator: given an input
// file and target settings, it produces an output file, overwriting any stale
// output at the same path.
package encode

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Settings are the parameters for one encode invocation.
type Settings struct {
	VideoBitrate int    // bps
	CRF          int    // quality factor, higher = more degradation
	Preset       string // x264 speed preset
	AudioBitrate int    // bps
	FastStart    bool   // move moov atom up front for streaming playback
}

// FFmpeg shells out to the ffmpeg binary.
type FFmpeg struct{}

// Encode re-encodes in to out with the given settings. Output is overwritten
// if present (-y). A non-zero exit is returned as an error with ffmpeg's
// combined output attached.
func (FFmpeg) Encode(ctx context.Context, in, out string, s Settings) error {
	args := []string{
		"-y", "-i", in,
		"-c:v", "libx264",
		"-b:v", fmt.Sprintf("%d", s.VideoBitrate),
		"-crf", fmt.Sprintf("%d", s.CRF),
		"-preset", s.Preset,
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%d", s.AudioBitrate),
	}
	if s.FastStart {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, out)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if outBytes, err := cmd.CombinedOutput(); err != nil {
		slog.Debug("ffmpeg failed", slog.Any("err", err), slog.String("out", tail(string(outBytes), 2048)))
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// tail keeps log lines bounded; ffmpeg output can run to megabytes.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
