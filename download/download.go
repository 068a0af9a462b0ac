// Package download wraps yt-dlp as the fetch collaborator: it resolves a
// supported video URL to a single local media file in a request-scoped temp
// location.
package download

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/driftline/reelpost/pipeline"
)

// mediumQuality caps resolution so downloads stay in the neighborhood of the
// upload budget to begin with.
const mediumQuality = "best[height<=720][ext=mp4]/best[ext=mp4]/best"

// YTDLP fetches videos by shelling out to the yt-dlp binary.
type YTDLP struct {
	TempDir string
	Binary  string // resolved lazily when empty
}

// Fetch downloads a single video (never a playlist) into a uniquely named
// file under TempDir and returns it with its probed size and title. Fetch
// errors are terminal for the request; callers must not retry.
func (d *YTDLP) Fetch(ctx context.Context, url string) (*pipeline.Asset, error) {
	if err := os.MkdirAll(d.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir temp dir: %w", err)
	}
	out := filepath.Join(d.TempDir, fmt.Sprintf("reelpost_%s.mp4", uuid.New().String()))

	cmd := exec.CommandContext(ctx, d.binary(), buildArgs(out, url)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// A partial file may exist after a failed run; the request owns
		// the name, so nothing else will ever reference it.
		_ = os.Remove(out)
		fetchErr := fmt.Errorf("yt-dlp: %w: %s", err, lastLine(stderr.String()))
		slog.Warn("download failed",
			slog.String("url", url),
			slog.String("class", Classify(fetchErr).String()),
			slog.Any("err", fetchErr))
		return nil, fetchErr
	}

	st, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp reported success but produced no output: %w", err)
	}
	title := strings.TrimSpace(stdout.String())
	if title == "" {
		title = "video"
	}
	slog.Info("download complete",
		slog.String("url", url),
		slog.String("path", out),
		slog.Int64("size", st.Size()),
		slog.String("title", title))
	return &pipeline.Asset{Path: out, Size: st.Size(), Title: title}, nil
}

// buildArgs constructs the yt-dlp invocation. --no-playlist bounds every call
// to one media entry; --print title with --no-simulate still downloads but
// emits the title on stdout.
func buildArgs(outPath, url string) []string {
	return []string{
		"--no-playlist",
		"--no-warnings",
		"-f", mediumQuality,
		"--no-simulate",
		"--print", "title",
		"-o", outPath,
		url,
	}
}

func (d *YTDLP) binary() string {
	if d.Binary != "" {
		return d.Binary
	}
	if p, err := exec.LookPath("yt-dlp"); err == nil {
		return p
	}
	if _, err := os.Stat("/usr/local/bin/yt-dlp"); err == nil {
		return "/usr/local/bin/yt-dlp"
	}
	return "yt-dlp"
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
