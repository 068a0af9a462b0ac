// Package probe reads container metadata (duration, size, bitrate, dimensions)
// from a local media file via a single ffprobe JSON call.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoDuration is returned when the container reports a zero, negative, or
// missing duration. Duration is the divisor for bitrate planning, so it must
// never be defaulted.
var ErrNoDuration = errors.New("probe: media reports no usable duration")

// Result describes a probed media file.
type Result struct {
	Duration float64 // seconds, always > 0
	Size     int64   // bytes
	BitRate  int64   // bps of the whole container
	Width    int     // primary video stream, 0 if unknown
	Height   int
}

// Probe runs ffprobe against path and returns the parsed result. It fails if
// the file is unreadable, not a recognized media container, or reports a
// non-positive duration.
func Probe(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	r := &Result{
		Duration: parseFloat(raw.Format.Duration),
		Size:     parseInt64(raw.Format.Size),
		BitRate:  parseInt64(raw.Format.BitRate),
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType == "video" {
			r.Width = s.Width
			r.Height = s.Height
			break
		}
	}
	if r.Duration <= 0 {
		return nil, ErrNoDuration
	}
	return r, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ffprobe returns numbers as strings.

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
