// Package compress shrinks a video to fit a byte budget by walking a ladder
// of decreasing-quality encode attempts until one fits or the ladder is
// exhausted.
package compress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftline/reelpost/encode"
	"github.com/driftline/reelpost/probe"
)

// ErrExhausted signals that every ladder rung produced output over budget.
// It is unrecoverable for the request, not fatal for the process.
var ErrExhausted = errors.New("compress: ladder exhausted without meeting budget")

// Encoder is the re-encode collaborator (see package encode for the default).
type Encoder interface {
	Encode(ctx context.Context, in, out string, s encode.Settings) error
}

// Engine drives the encoder through the ladder.
type Engine struct {
	Encoder      Encoder
	Ladder       []Rung
	SafetyMargin float64
	AudioBitrate int // bps

	// ProbeFile defaults to probe.Probe; overridable for tests.
	ProbeFile func(ctx context.Context, path string) (*probe.Result, error)
}

// NewEngine returns an Engine with the default ffmpeg encoder and ladder.
func NewEngine(margin float64, audioBitrate int) *Engine {
	return &Engine{
		Encoder:      encode.FFmpeg{},
		Ladder:       DefaultLadder,
		SafetyMargin: margin,
		AudioBitrate: audioBitrate,
	}
}

// Compress re-encodes inputPath until the output fits within budget bytes,
// trying at most maxAttempts ladder rungs. The first attempt that fits wins;
// later rungs are never run once a candidate fits. A single attempt's encode
// failure is absorbed and the next rung is tried. Every candidate that does
// not become the returned path is deleted before Compress returns.
func (e *Engine) Compress(ctx context.Context, inputPath string, budget int64, maxAttempts int) (string, error) {
	probeFn := e.ProbeFile
	if probeFn == nil {
		probeFn = probe.Probe
	}
	info, err := probeFn(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("compress: probe input: %w", err)
	}

	if maxAttempts > len(e.Ladder) {
		maxAttempts = len(e.Ladder)
	}
	outputPath := candidatePath(inputPath)
	logger := slog.Default().With(slog.String("component", "compress"), slog.String("input", inputPath))
	logger.Info("starting compression",
		slog.Int64("size", info.Size),
		slog.Float64("duration", info.Duration),
		slog.Int64("budget", budget))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		settings, err := Plan(e.Ladder, budget, info.Duration, e.SafetyMargin, e.AudioBitrate, attempt)
		if err != nil {
			removeIfExists(outputPath)
			return "", err
		}
		logger.Info("compression attempt",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Int("video_bitrate", settings.VideoBitrate),
			slog.Int("crf", settings.CRF),
			slog.String("preset", settings.Preset))

		// Stale candidate from the previous rung must not survive.
		removeIfExists(outputPath)

		if err := e.Encoder.Encode(ctx, inputPath, outputPath, settings); err != nil {
			// A single rung's tool failure is recoverable by trying
			// more aggressive settings.
			logger.Warn("encode attempt failed", slog.Int("attempt", attempt), slog.Any("err", err))
			removeIfExists(outputPath)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		st, err := os.Stat(outputPath)
		if err != nil {
			logger.Warn("encode produced no readable output", slog.Int("attempt", attempt), slog.Any("err", err))
			continue
		}
		if st.Size() <= budget {
			logger.Info("compression succeeded", slog.Int("attempt", attempt), slog.Int64("output_size", st.Size()))
			return outputPath, nil
		}
		logger.Info("candidate still over budget",
			slog.Int("attempt", attempt),
			slog.Int64("candidate_size", st.Size()))
		removeIfExists(outputPath)
	}

	removeIfExists(outputPath)
	logger.Warn("compression exhausted", slog.Int("max_attempts", maxAttempts))
	return "", ErrExhausted
}

// candidatePath derives the deterministic output path for an input file,
// keeping the extension so the container format is preserved.
func candidatePath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_compressed" + ext
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove candidate", slog.String("path", path), slog.Any("err", err))
	}
}
